package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Activity is an immutable audit record attached to a lead. Both the
// ingestion pipeline (on creation) and the assignment engine (on assignment)
// append activities; nothing updates or deletes them.
type Activity struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	Description string
	Metadata    map[string]any
	CreatedAt   time.Time
}

type CreateActivityParams struct {
	LeadID      uuid.UUID
	Description string
	Metadata    map[string]any
}

func (r *Repository) CreateActivity(ctx context.Context, params CreateActivityParams) (Activity, error) {
	metadata := params.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return Activity{}, err
	}

	var a Activity
	var raw []byte
	err = r.pool.QueryRow(ctx, `
		INSERT INTO activities (lead_id, description, metadata)
		VALUES ($1, $2, $3)
		RETURNING id, lead_id, description, metadata, created_at
	`, params.LeadID, params.Description, metadataJSON).Scan(
		&a.ID, &a.LeadID, &a.Description, &raw, &a.CreatedAt,
	)
	if err != nil {
		return Activity{}, err
	}
	if err := json.Unmarshal(raw, &a.Metadata); err != nil {
		return Activity{}, err
	}
	return a, nil
}

func (r *Repository) ListActivities(ctx context.Context, leadID uuid.UUID) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, description, metadata, created_at
		FROM activities
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		var raw []byte
		if err := rows.Scan(&a.ID, &a.LeadID, &a.Description, &raw, &a.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &a.Metadata); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
