package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"zakazBack/internal/lifecycle"
	"zakazBack/internal/models"
	"zakazBack/utils"
)

// MediaUploader copies a picked file to a stable path and uploads it to
// durable storage, returning the public URL.
type MediaUploader interface {
	UploadMedia(src io.Reader, contentType string) (string, error)
}

type RequestService struct {
	RequestRepo RequestStore
	Uploader    MediaUploader
	Events      Publisher
}

// CreateRequest validates the form fields before any network call, uploads
// the optional media, then writes the request document. MediaURL and
// MediaType are set together or not at all.
func (s *RequestService) CreateRequest(ctx context.Context, req models.Request, media io.Reader, mediaType string) (models.Request, error) {
	if strings.TrimSpace(req.Description) == "" {
		return models.Request{}, models.ErrEmptyDescription
	}
	if !models.ValidCategory(req.Category) {
		return models.Request{}, models.ErrInvalidCategory
	}

	if media != nil {
		if !utils.IsImageMimeType(mediaType) && !strings.HasPrefix(mediaType, "video/") {
			return models.Request{}, models.ErrUnsupportedMedia
		}
		if s.Uploader == nil {
			return models.Request{}, models.ErrUploadFailed
		}
		url, err := s.Uploader.UploadMedia(media, mediaType)
		if err != nil {
			return models.Request{}, fmt.Errorf("%w: %v", models.ErrUploadFailed, err)
		}
		req.MediaURL = &url
		req.MediaType = &mediaType
	} else {
		req.MediaURL = nil
		req.MediaType = nil
	}

	created, err := s.RequestRepo.CreateRequest(ctx, req)
	if err != nil {
		return models.Request{}, err
	}
	s.requestsChanged()
	return created, nil
}

func (s *RequestService) GetRequestByID(ctx context.Context, id int64) (models.Request, error) {
	return s.RequestRepo.GetRequestByID(ctx, id)
}

func (s *RequestService) ListByOwner(ctx context.Context, userID int64) ([]models.Request, error) {
	return s.RequestRepo.ListByOwner(ctx, userID)
}

func (s *RequestService) ListByStatus(ctx context.Context, status string, providerID int64) ([]models.Request, error) {
	if !models.ValidStatus(status) {
		return nil, models.ErrInvalidStatus
	}
	return s.RequestRepo.ListByStatus(ctx, status, providerID)
}

// AdvanceStatus overwrites the request status. The store does not check the
// current status, so out-of-order calls still land; the forward-only chain is
// a convention the clients follow (see internal/lifecycle), and writes that
// leave it are only logged.
func (s *RequestService) AdvanceStatus(ctx context.Context, id int64, status string, providerID *int64) error {
	if !models.ValidStatus(status) {
		return models.ErrInvalidStatus
	}
	if req, err := s.RequestRepo.GetRequestByID(ctx, id); err == nil {
		if !lifecycle.CanAdvance(req.Status, status) {
			log.Printf("request %d status overwrite %s -> %s is off the forward chain", id, req.Status, status)
		}
	}
	if err := s.RequestRepo.AdvanceStatus(ctx, id, status, providerID); err != nil {
		return err
	}
	s.requestsChanged()
	return nil
}

func (s *RequestService) requestsChanged() {
	if s.Events != nil {
		s.Events.RequestsChanged()
	}
}
