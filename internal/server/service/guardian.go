package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/policy"
	"github.com/iudanet/wealthvault/internal/server/jwt"
	"github.com/iudanet/wealthvault/internal/server/metrics"
	"github.com/iudanet/wealthvault/internal/server/storage"
	"github.com/iudanet/wealthvault/internal/validation"
)

// ShareLink выданная ссылка вместе с токеном
type ShareLink struct {
	Share *models.GuardianShare
	Token string
	URL   string
}

// GuardianService issues, lists, revokes and resolves guardian shares.
type GuardianService struct {
	logger    *slog.Logger
	shares    storage.ShareStorage
	policies  *PolicyService
	signer    *jwt.ShareSigner
	metrics   *metrics.Metrics
	publicURL string
	shareTTL  time.Duration
	now       func() time.Time
}

// NewGuardianService creates a new guardian share service
func NewGuardianService(
	logger *slog.Logger,
	shares storage.ShareStorage,
	policies *PolicyService,
	signer *jwt.ShareSigner,
	m *metrics.Metrics,
	publicURL string,
	shareTTL time.Duration,
) *GuardianService {
	return &GuardianService{
		logger:    logger,
		shares:    shares,
		policies:  policies,
		signer:    signer,
		metrics:   m,
		publicURL: strings.TrimRight(publicURL, "/"),
		shareTTL:  shareTTL,
		now:       time.Now,
	}
}

// CreateShare issues a new guardian link for the owner.
// An explicit subset may only name the owner's own records.
func (s *GuardianService) CreateShare(ctx context.Context, ownerID string, opts models.ShareOptions) (*ShareLink, error) {
	if opts.IncludeAll {
		opts.RecordIDs = nil
	} else {
		ids, err := s.checkSubset(ctx, ownerID, opts.RecordIDs)
		if err != nil {
			return nil, err
		}
		opts.RecordIDs = ids
	}

	now := s.now().UTC()
	share := &models.GuardianShare{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Options:   opts,
		CreatedAt: now,
		ExpiresAt: now.Add(s.shareTTL),
	}

	if err := s.shares.CreateShare(ctx, share); err != nil {
		return nil, fmt.Errorf("failed to create share: %w", err)
	}

	link, err := s.link(share)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementSharesCreated()
	s.logger.InfoContext(ctx, "guardian share created",
		slog.String("user_id", ownerID),
		slog.String("share_id", share.ID),
		slog.Bool("include_all", opts.IncludeAll),
	)

	return link, nil
}

// ListShares returns the owner's shares with their links, newest first
func (s *GuardianService) ListShares(ctx context.Context, ownerID string) ([]*ShareLink, error) {
	shares, err := s.shares.ListShares(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}

	links := make([]*ShareLink, 0, len(shares))
	for _, share := range shares {
		// HS256 детерминирован: токен восстанавливается из строки share
		link, err := s.link(share)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, nil
}

// RevokeShare invalidates a share; its token stops resolving immediately
func (s *GuardianService) RevokeShare(ctx context.Context, ownerID, id string) error {
	if err := s.shares.RevokeShare(ctx, ownerID, id, s.now().UTC()); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "guardian share revoked",
		slog.String("user_id", ownerID),
		slog.String("share_id", id),
	)
	return nil
}

// Resolve validates a guardian token and returns the redacted view.
// Every failure of the token or its share is reported as ErrAccessDenied.
func (s *GuardianService) Resolve(ctx context.Context, token string) (*models.GuardianView, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, s.deny(ctx, "invalid token", err)
	}

	share, err := s.shares.GetShare(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, storage.ErrShareNotFound) {
			return nil, s.deny(ctx, "unknown share", err)
		}
		return nil, fmt.Errorf("failed to get share: %w", err)
	}

	if share.OwnerID != claims.Subject {
		return nil, s.deny(ctx, "owner mismatch", nil)
	}
	if !share.Usable(s.now()) {
		return nil, s.deny(ctx, "share revoked or expired", nil)
	}

	records, err := s.policies.Snapshot(ctx, share.OwnerID)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveGuardianResolve(metrics.ResultOK)
	s.logger.InfoContext(ctx, "guardian share resolved",
		slog.String("share_id", share.ID),
	)

	return policy.Project(records, share.Options), nil
}

func (s *GuardianService) deny(ctx context.Context, reason string, err error) error {
	s.metrics.ObserveGuardianResolve(metrics.ResultDenied)
	attrs := []any{slog.String("reason", reason)}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	s.logger.WarnContext(ctx, "guardian access denied", attrs...)
	return ErrAccessDenied
}

func (s *GuardianService) checkSubset(ctx context.Context, ownerID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, validation.FieldErrors{"record_ids": "select at least one record or share all"}
	}

	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if _, err := s.policies.Get(ctx, ownerID, id); err != nil {
			if errors.Is(err, storage.ErrPolicyNotFound) {
				return nil, validation.FieldErrors{"record_ids": fmt.Sprintf("unknown record %q", id)}
			}
			return nil, err
		}
		unique = append(unique, id)
	}
	return unique, nil
}

func (s *GuardianService) link(share *models.GuardianShare) (*ShareLink, error) {
	token, err := s.signer.Sign(share.ID, share.OwnerID, share.CreatedAt, share.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &ShareLink{
		Share: share,
		Token: token,
		URL:   GuardianURL(s.publicURL, token),
	}, nil
}

// GuardianURL builds the link a family member opens: {public}/?guardian=1&token=...
func GuardianURL(publicURL, token string) string {
	q := url.Values{}
	q.Set("guardian", "1")
	q.Set("token", token)
	return strings.TrimRight(publicURL, "/") + "/?" + q.Encode()
}
