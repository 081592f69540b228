package services

import (
	"context"
	"fmt"
	"log"

	"zakazBack/internal/models"
)

type ProposalService struct {
	ProposalRepo ProposalStore
	RequestRepo  RequestStore
	UserRepo     UserStore
	Push         PushSender
	Events       Publisher
}

// SubmitProposal appends the provider's bid to the request. Resubmitting a
// byte-identical proposal is collapsed to one stored entry and is not an
// error. The request owner gets a push notification for a fresh proposal.
func (s *ProposalService) SubmitProposal(ctx context.Context, p models.Proposal) (models.Proposal, error) {
	req, err := s.RequestRepo.GetRequestByID(ctx, p.RequestID)
	if err != nil {
		return models.Proposal{}, err
	}

	appended, err := s.ProposalRepo.Append(ctx, p)
	if err != nil {
		return models.Proposal{}, err
	}
	s.requestsChanged()

	if appended {
		s.notifyOwner(ctx, req, p)
	}
	return p, nil
}

// AcceptProposal moves the request to inProgress with the chosen provider in
// one write. The remaining proposals stay stored; clients filter them out.
// The rejected providers are not notified.
func (s *ProposalService) AcceptProposal(ctx context.Context, requestID, providerID int64) error {
	if err := s.ProposalRepo.Accept(ctx, requestID, providerID); err != nil {
		return err
	}
	s.requestsChanged()
	return nil
}

func (s *ProposalService) notifyOwner(ctx context.Context, req models.Request, p models.Proposal) {
	if s.Push == nil || s.UserRepo == nil {
		return
	}
	token, err := s.UserRepo.GetFCMToken(ctx, req.UserID)
	if err != nil || token == "" {
		return
	}
	body := fmt.Sprintf("Price %s, deadline %s", p.Price, p.Deadline)
	data := map[string]string{
		"requestId":  fmt.Sprintf("%d", req.ID),
		"providerId": fmt.Sprintf("%d", p.ProviderID),
	}
	if err := s.Push.Send(ctx, token, "New proposal", body, data); err != nil {
		log.Printf("proposal push to user %d failed: %v", req.UserID, err)
	}
}

func (s *ProposalService) requestsChanged() {
	if s.Events != nil {
		s.Events.RequestsChanged()
	}
}
