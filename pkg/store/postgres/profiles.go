package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/veterinaryhq/userd/internal/telemetry"
	"github.com/veterinaryhq/userd/pkg/store"
)

// GetProfileByUserID returns the profile for the given user id.
//
// Settings is stored as jsonb; a NULL or missing value comes back as an
// empty map so callers never see a nil settings map on a found profile.
func (s *Store) GetProfileByUserID(ctx context.Context, userID string) (*store.Profile, error) {
	if userID == "" {
		return nil, store.NewInvalidArgumentError("user id is required")
	}

	ctx, span := telemetry.StartStoreSpan(ctx, telemetry.SpanStoreGetProfile, telemetry.UserID(userID))
	defer span.End()

	query := `
		SELECT user_id, display_name, avatar_url, settings, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	var (
		p            store.Profile
		settingsJSON []byte
	)
	err := s.queryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.DisplayName,
		&p.AvatarURL,
		&settingsJSON,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, mapPgError(err, "GetProfileByUserID")
	}

	p.Settings = map[string]string{}
	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &p.Settings); err != nil {
			return nil, store.NewBackendError(fmt.Sprintf("GetProfileByUserID: malformed settings: %v", err), err)
		}
	}

	return &p, nil
}
