package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"zakazBack/internal/models"
)

// fakeStore is an in-memory stand-in for the repositories, mirroring their
// semantics: unconditional status overwrites, value-deduplicated proposal
// appends, transactional rating aggregates.
type fakeStore struct {
	requests     map[int64]*models.Request
	nextID       int64
	ratings      []models.Rating
	nextRatingID int64
	stats        map[int64]models.ProviderStats
	sessions     map[int64]models.Session
	fcmTokens    map[int64]string
	changed      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests:  map[int64]*models.Request{},
		stats:     map[int64]models.ProviderStats{},
		sessions:  map[int64]models.Session{},
		fcmTokens: map[int64]string{},
	}
}

func (f *fakeStore) CreateRequest(_ context.Context, req models.Request) (models.Request, error) {
	f.nextID++
	req.ID = f.nextID
	req.Status = models.StatusPending
	req.CreatedAt = time.Now()
	req.Proposals = []models.Proposal{}
	stored := req
	f.requests[req.ID] = &stored
	return req, nil
}

func (f *fakeStore) GetRequestByID(_ context.Context, id int64) (models.Request, error) {
	req, ok := f.requests[id]
	if !ok {
		return models.Request{}, models.ErrRequestNotFound
	}
	return *req, nil
}

func (f *fakeStore) ListByOwner(_ context.Context, userID int64) ([]models.Request, error) {
	out := []models.Request{}
	for _, req := range f.requests {
		if req.UserID == userID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByStatus(_ context.Context, status string, providerID int64) ([]models.Request, error) {
	out := []models.Request{}
	for _, req := range f.requests {
		if req.Status != status {
			continue
		}
		if providerID > 0 && (req.ProviderID == nil || *req.ProviderID != providerID) {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (f *fakeStore) AdvanceStatus(_ context.Context, id int64, status string, providerID *int64) error {
	req, ok := f.requests[id]
	if !ok {
		return models.ErrRequestNotFound
	}
	req.Status = status
	if providerID != nil {
		req.ProviderID = providerID
	}
	return nil
}

func (f *fakeStore) Append(_ context.Context, p models.Proposal) (bool, error) {
	req, ok := f.requests[p.RequestID]
	if !ok {
		return false, models.ErrRequestNotFound
	}
	for _, existing := range req.Proposals {
		if existing.Equal(p) {
			return false, nil
		}
	}
	req.Proposals = append(req.Proposals, p)
	return true, nil
}

func (f *fakeStore) ListByRequest(_ context.Context, requestID int64) ([]models.Proposal, error) {
	req, ok := f.requests[requestID]
	if !ok {
		return nil, models.ErrRequestNotFound
	}
	return req.Proposals, nil
}

func (f *fakeStore) Accept(_ context.Context, requestID, providerID int64) error {
	req, ok := f.requests[requestID]
	if !ok {
		return models.ErrRequestNotFound
	}
	req.Status = models.StatusInProgress
	req.ProviderID = &providerID
	return nil
}

func (f *fakeStore) SubmitRating(_ context.Context, rating models.Rating) (models.Rating, models.ProviderStats, error) {
	f.nextRatingID++
	rating.ID = f.nextRatingID
	rating.CreatedAt = time.Now()
	f.ratings = append(f.ratings, rating)

	values := []int{}
	for _, rt := range f.ratings {
		if rt.ProviderID == rating.ProviderID {
			values = append(values, rt.Rating)
		}
	}
	stats := models.ProviderStats{
		ProviderID:     rating.ProviderID,
		CompletedTasks: len(values),
		AverageRating:  models.MeanRating(values),
	}
	f.stats[rating.ProviderID] = stats

	if req, ok := f.requests[rating.RequestID]; ok {
		req.Status = models.StatusCompleted
	}
	return rating, stats, nil
}

func (f *fakeStore) EnsureUser(context.Context, int64, string) error { return nil }

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (models.User, error) {
	stats := f.stats[id]
	return models.User{ID: id, CompletedTasks: stats.CompletedTasks, AverageRating: stats.AverageRating}, nil
}

func (f *fakeStore) GetProviderStats(_ context.Context, providerID int64) (models.ProviderStats, error) {
	stats, ok := f.stats[providerID]
	if !ok {
		return models.ProviderStats{ProviderID: providerID}, nil
	}
	return stats, nil
}

func (f *fakeStore) SetSession(_ context.Context, id int64, session models.Session) error {
	f.sessions[id] = session
	return nil
}

func (f *fakeStore) GetSessionByToken(_ context.Context, token string) (models.Session, error) {
	for _, s := range f.sessions {
		if s.RefreshToken == token {
			return s, nil
		}
	}
	return models.Session{}, models.ErrSessionNotFound
}

func (f *fakeStore) SetFCMToken(_ context.Context, id int64, token string) error {
	f.fcmTokens[id] = token
	return nil
}

func (f *fakeStore) GetFCMToken(_ context.Context, id int64) (string, error) {
	return f.fcmTokens[id], nil
}

func (f *fakeStore) RequestsChanged() { f.changed++ }

type failingUploader struct{}

func (failingUploader) UploadMedia(io.Reader, string) (string, error) {
	return "", errors.New("connection reset")
}

type fixedUploader struct{ url string }

func (u fixedUploader) UploadMedia(io.Reader, string) (string, error) {
	return u.url, nil
}

func TestCreateRequestDefaults(t *testing.T) {
	store := newFakeStore()
	svc := &RequestService{RequestRepo: store, Events: store}

	for _, category := range []string{models.CategoryRepair, models.CategoryCleaning, models.CategoryTransport} {
		req, err := svc.CreateRequest(context.Background(), models.Request{
			Description: "Fix sink",
			Category:    category,
			UserID:      1,
		}, nil, "")
		if err != nil {
			t.Fatalf("CreateRequest(%s): %v", category, err)
		}
		if req.Status != models.StatusPending {
			t.Fatalf("expected pending status, got %s", req.Status)
		}
		if req.Proposals == nil || len(req.Proposals) != 0 {
			t.Fatalf("expected empty proposal sequence, got %v", req.Proposals)
		}
		if req.MediaURL != nil || req.MediaType != nil {
			t.Fatal("no media was attached; mediaUrl/mediaType must be absent")
		}
	}
}

func TestCreateRequestValidation(t *testing.T) {
	store := newFakeStore()
	svc := &RequestService{RequestRepo: store}

	_, err := svc.CreateRequest(context.Background(), models.Request{Description: "   ", Category: models.CategoryRepair, UserID: 1}, nil, "")
	if !errors.Is(err, models.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
	_, err = svc.CreateRequest(context.Background(), models.Request{Description: "Fix sink", Category: "plumbing", UserID: 1}, nil, "")
	if !errors.Is(err, models.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
	if len(store.requests) != 0 {
		t.Fatal("validation failures must happen before any write")
	}

	_, err = svc.CreateRequest(context.Background(), models.Request{Description: "Fix sink", Category: models.CategoryRepair, UserID: 1},
		strings.NewReader("%PDF-"), "application/pdf")
	if !errors.Is(err, models.ErrUnsupportedMedia) {
		t.Fatalf("expected ErrUnsupportedMedia, got %v", err)
	}
}

func TestCreateRequestUploadFailure(t *testing.T) {
	store := newFakeStore()
	svc := &RequestService{RequestRepo: store, Uploader: failingUploader{}}

	_, err := svc.CreateRequest(context.Background(), models.Request{
		Description: "Fix sink",
		Category:    models.CategoryRepair,
		UserID:      1,
	}, strings.NewReader("bytes"), "image/jpeg")
	if !errors.Is(err, models.ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	if len(store.requests) != 0 {
		t.Fatal("request must not be written when the upload fails")
	}
}

func TestCreateRequestWithMedia(t *testing.T) {
	store := newFakeStore()
	svc := &RequestService{RequestRepo: store, Uploader: fixedUploader{url: "https://bucket.example/requests/1700000000000"}}

	req, err := svc.CreateRequest(context.Background(), models.Request{
		Description: "Broken door",
		Category:    models.CategoryRepair,
		UserID:      1,
	}, strings.NewReader("bytes"), "video/mp4")
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if req.MediaURL == nil || req.MediaType == nil {
		t.Fatal("mediaUrl and mediaType must be present together")
	}
	if *req.MediaType != "video/mp4" {
		t.Fatalf("unexpected media type %s", *req.MediaType)
	}
}

func TestSubmitProposalIdempotent(t *testing.T) {
	store := newFakeStore()
	reqSvc := &RequestService{RequestRepo: store}
	propSvc := &ProposalService{ProposalRepo: store, RequestRepo: store, UserRepo: store, Events: store}

	req, err := reqSvc.CreateRequest(context.Background(), models.Request{Description: "Fix sink", Category: models.CategoryRepair, UserID: 1}, nil, "")
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	proposal := models.Proposal{RequestID: req.ID, Price: "50", Deadline: "2 days", Comment: "tools included", ProviderID: 2, CreatedAt: 1700000000000}
	for i := 0; i < 2; i++ {
		if _, err := propSvc.SubmitProposal(context.Background(), proposal); err != nil {
			t.Fatalf("SubmitProposal #%d: %v", i+1, err)
		}
	}

	stored, err := propSvc.ProposalRepo.ListByRequest(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("ListByRequest: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("byte-identical resubmission must be stored once, got %d entries", len(stored))
	}

	// A different deadline is a different proposal by value.
	proposal.Deadline = "3 days"
	if _, err := propSvc.SubmitProposal(context.Background(), proposal); err != nil {
		t.Fatalf("SubmitProposal: %v", err)
	}
	stored, _ = propSvc.ProposalRepo.ListByRequest(context.Background(), req.ID)
	if len(stored) != 2 {
		t.Fatalf("expected 2 proposals after distinct submission, got %d", len(stored))
	}
}

func TestStatusOverwriteGap(t *testing.T) {
	store := newFakeStore()
	reqSvc := &RequestService{RequestRepo: store}

	req, err := reqSvc.CreateRequest(context.Background(), models.Request{Description: "Fix sink", Category: models.CategoryRepair, UserID: 1}, nil, "")
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	// The store does not check the current status: jumping straight from
	// pending to completed lands silently.
	if err := reqSvc.AdvanceStatus(context.Background(), req.ID, models.StatusCompleted, nil); err != nil {
		t.Fatalf("AdvanceStatus: %v", err)
	}
	got, _ := reqSvc.GetRequestByID(context.Background(), req.ID)
	if got.Status != models.StatusCompleted {
		t.Fatalf("expected completed after overwrite, got %s", got.Status)
	}

	if err := reqSvc.AdvanceStatus(context.Background(), req.ID, "archived", nil); !errors.Is(err, models.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus for unknown status, got %v", err)
	}
	if err := reqSvc.AdvanceStatus(context.Background(), 9999, models.StatusCompleted, nil); !errors.Is(err, models.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestRatingValidation(t *testing.T) {
	store := newFakeStore()
	svc := &RatingService{RatingRepo: store}

	for _, v := range []int{0, -1, 6} {
		_, _, err := svc.SubmitRating(context.Background(), models.Rating{RequestID: 1, ProviderID: 2, Rating: v})
		if !errors.Is(err, models.ErrInvalidRating) {
			t.Fatalf("expected ErrInvalidRating for %d, got %v", v, err)
		}
	}
	if len(store.ratings) != 0 {
		t.Fatal("rejected ratings must not be stored")
	}
}

func TestRatingAggregates(t *testing.T) {
	store := newFakeStore()
	svc := &RatingService{RatingRepo: store, Events: store}

	values := []int{5, 3, 4, 1, 5}
	var stats models.ProviderStats
	for i, v := range values {
		var err error
		_, stats, err = svc.SubmitRating(context.Background(), models.Rating{RequestID: int64(i + 1), ProviderID: 7, Rating: v})
		if err != nil {
			t.Fatalf("SubmitRating #%d: %v", i+1, err)
		}
	}

	if stats.CompletedTasks != len(values) {
		t.Fatalf("completedTasks = %d, want %d", stats.CompletedTasks, len(values))
	}
	want := models.MeanRating(values)
	if diff := stats.AverageRating - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("averageRating = %v, want %v", stats.AverageRating, want)
	}
}

func TestFullLifecycleScenario(t *testing.T) {
	store := newFakeStore()
	reqSvc := &RequestService{RequestRepo: store, Events: store}
	propSvc := &ProposalService{ProposalRepo: store, RequestRepo: store, UserRepo: store, Events: store}
	rateSvc := &RatingService{RatingRepo: store, Events: store}

	// Client publishes a request with no media.
	req, err := reqSvc.CreateRequest(context.Background(), models.Request{
		Description: "Fix sink",
		Category:    models.CategoryRepair,
		UserID:      1,
	}, nil, "")
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if req.Status != models.StatusPending || req.MediaURL != nil {
		t.Fatalf("unexpected fresh request: %+v", req)
	}

	// Provider submits a proposal.
	if _, err := propSvc.SubmitProposal(context.Background(), models.Proposal{
		RequestID: req.ID, Price: "50", Deadline: "2 days", ProviderID: 2, CreatedAt: 1700000000000,
	}); err != nil {
		t.Fatalf("SubmitProposal: %v", err)
	}
	got, _ := reqSvc.GetRequestByID(context.Background(), req.ID)
	if len(got.Proposals) != 1 {
		t.Fatalf("expected 1 proposal, got %d", len(got.Proposals))
	}

	// Client accepts it.
	if err := propSvc.AcceptProposal(context.Background(), req.ID, 2); err != nil {
		t.Fatalf("AcceptProposal: %v", err)
	}
	got, _ = reqSvc.GetRequestByID(context.Background(), req.ID)
	if got.Status != models.StatusInProgress || got.ProviderID == nil || *got.ProviderID != 2 {
		t.Fatalf("after accept: %+v", got)
	}

	// Provider marks the work done.
	if err := reqSvc.AdvanceStatus(context.Background(), req.ID, models.StatusAwaitingConfirmation, nil); err != nil {
		t.Fatalf("AdvanceStatus: %v", err)
	}
	got, _ = reqSvc.GetRequestByID(context.Background(), req.ID)
	if got.Status != models.StatusAwaitingConfirmation {
		t.Fatalf("expected awaitingConfirmation, got %s", got.Status)
	}

	// Client rates 4 stars; the request completes and the provider's
	// aggregates update in the same store call.
	_, stats, err := rateSvc.SubmitRating(context.Background(), models.Rating{
		RequestID: req.ID, ProviderID: 2, Rating: 4, Comment: "quick work",
	})
	if err != nil {
		t.Fatalf("SubmitRating: %v", err)
	}
	got, _ = reqSvc.GetRequestByID(context.Background(), req.ID)
	if got.Status != models.StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if stats.CompletedTasks != 1 || stats.AverageRating != 4.0 {
		t.Fatalf("unexpected provider stats: %+v", stats)
	}
}
