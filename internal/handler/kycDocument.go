package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/eloity/tradelimits/internal/context"
	"github.com/eloity/tradelimits/internal/errHandler"
	"github.com/eloity/tradelimits/internal/file"
	"github.com/eloity/tradelimits/internal/helper"
	"github.com/eloity/tradelimits/internal/limits"
	"github.com/eloity/tradelimits/internal/models"
	"github.com/eloity/tradelimits/internal/repository"
	"github.com/eloity/tradelimits/internal/request"
	"github.com/eloity/tradelimits/internal/response"
	"github.com/eloity/tradelimits/internal/stream"
	"github.com/eloity/tradelimits/internal/validator"
)

var ErrDocumentSaveFailed = errors.New("document could not be saved")

type KYCDocumentResponseData struct {
	ID                 string     `json:"id"`
	DocumentType       string     `json:"document_type"`
	DocumentURL        string     `json:"document_url"`
	VerificationStatus string     `json:"verification_status"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type KYCDocumentHandler struct {
	Limits       *limits.Service
	DocRepo      repository.KYCDocumentRepository
	FileUploader file.Uploader
	Kafka        stream.Producer

	ErrHandler *errHandler.ErrorHandler
	Helper     *helper.HelperRepository
}

func NewKYCDocumentHandler(handler *KYCDocumentHandler) *KYCDocumentHandler {
	return &KYCDocumentHandler{
		Limits:       handler.Limits,
		DocRepo:      handler.DocRepo,
		FileUploader: handler.FileUploader,
		Kafka:        handler.Kafka,
		ErrHandler:   handler.ErrHandler,
		Helper:       handler.Helper,
	}
}

func newKYCDocumentResponseData(doc *models.KYCDocument) KYCDocumentResponseData {
	data := KYCDocumentResponseData{
		ID:                 doc.ID,
		DocumentType:       doc.DocumentType,
		DocumentURL:        doc.DocumentURL,
		VerificationStatus: doc.VerificationStatus,
		CreatedAt:          doc.CreatedAt,
	}

	if doc.VerifiedAt.Valid {
		verifiedAt := doc.VerifiedAt.Time
		data.VerifiedAt = &verifiedAt
	}

	return data
}

// HandleUploadDocument receives a multipart verification document, pushes
// the file to storage and persists the row in pending state.
func (h *KYCDocumentHandler) HandleUploadDocument(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(10 << 20) // 10 MB
	if err != nil {
		message := errors.New("invalid request data")
		h.ErrHandler.BadRequest(w, r, message)
		return
	}

	documentType := r.FormValue("document_type")

	var v validator.Validator
	v.Check(validator.NotBlank(documentType), "Document type is required")
	v.Check(validator.In(documentType,
		repository.KYCDocumentTypePassport,
		repository.KYCDocumentTypeDriverLicense,
		repository.KYCDocumentTypeNationalID,
		repository.KYCDocumentTypeUtilityBill,
		repository.KYCDocumentTypeBankStatement,
	), "Document type is not supported")

	if v.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, v.Errors)
		return
	}

	upload, uploadHeader, err := r.FormFile("document")
	if err != nil {
		message := errors.New("error retrieving the file")
		h.ErrHandler.BadRequest(w, r, message)
		return
	}
	defer upload.Close()

	fileExtension := filepath.Ext(uploadHeader.Filename)

	tempFile, err := os.CreateTemp("", fmt.Sprintf("kyc-*%s", fileExtension))
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	defer tempFile.Close()
	defer os.Remove(tempFile.Name())

	_, err = io.Copy(tempFile, upload)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	fileURL, err := h.FileUploader.UploadFile(tempFile.Name())
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	userID := context.ContextGetAuthenticatedUserID(r)

	document := h.Limits.UploadKYCDocument(&models.KYCDocument{
		UserID:             userID,
		DocumentType:       documentType,
		DocumentURL:        fileURL,
		VerificationStatus: repository.KYCDocumentStatusPending,
	})
	if document == nil {
		h.ErrHandler.ServerError(w, r, ErrDocumentSaveFailed)
		return
	}

	message := "Document uploaded successfully. It will be reviewed shortly."
	err = response.JSONCreatedResponse(w, newKYCDocumentResponseData(document), message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *KYCDocumentHandler) HandleGetMyDocuments(w http.ResponseWriter, r *http.Request) {
	userID := context.ContextGetAuthenticatedUserID(r)

	documents := h.Limits.GetUserKYCDocuments(userID)

	formattedResponse := make([]KYCDocumentResponseData, len(documents))
	for i, doc := range documents {
		formattedResponse[i] = newKYCDocumentResponseData(&doc)
	}

	message := "Documents retrieved successfully"
	err := response.JSONOkResponse(w, formattedResponse, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleReviewDocument applies a reviewer's decision to a pending
// document. Verifying an identity document publishes a kyc.approved event
// so the limits worker can move the user to the granted tier.
func (h *KYCDocumentHandler) HandleReviewDocument(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")

	var input struct {
		Status    string              `json:"status"`
		KYCLevel  *int                `json:"kyc_level"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Status), "Status is required")
	input.Validator.Check(validator.In(input.Status,
		repository.KYCDocumentStatusVerified,
		repository.KYCDocumentStatusRejected,
	), "Status must be verified or rejected")

	if input.Status == repository.KYCDocumentStatusVerified {
		input.Validator.Check(input.KYCLevel != nil, "KYC level is required when verifying a document")
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	document, found, err := h.DocRepo.GetOne(documentID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	updated, err := h.DocRepo.UpdateStatus(documentID, input.Status)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !updated {
		message := "Document has already been reviewed"
		response.JSONErrorResponse(w, nil, message, http.StatusConflict, nil)
		return
	}

	if input.Status == repository.KYCDocumentStatusVerified {
		event := &stream.KYCApprovedEvent{
			UserID:     document.UserID,
			KYCLevel:   *input.KYCLevel,
			DocumentID: document.ID,
			ApprovedAt: time.Now().UTC(),
		}

		// the tier change itself is applied by the limits worker
		h.Helper.BackgroundTask(r, func() error {
			jsonMessage, err := json.Marshal(event)
			if err != nil {
				return err
			}

			return h.Kafka.ProduceMessage(stream.KYCApprovedTopic, string(jsonMessage))
		})
	}

	message := "Document review recorded successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
