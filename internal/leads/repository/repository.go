// Package repository provides pgx-backed data access for leads, staff and
// the lead activity trail.
package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"removals_crm_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

// ErrDuplicateEmail is returned when a create collides with the unique
// email index, i.e. another writer created a lead for the same address first.
var ErrDuplicateEmail = errors.New("lead with this email already exists")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID            uuid.UUID
	FirstName     string
	LastName      string
	Email         *string
	Phone         *string
	Source        domain.Source
	ExternalRef   string
	Status        domain.Status
	ContactStatus domain.ContactStatus
	MoveDate      *time.Time
	FromAddress   string
	FromPostcode  string
	ToAddress     string
	ToPostcode    string
	PropertyType  string
	Bedrooms      *int
	DistanceMiles *float64
	NeedsPacking  bool
	NeedsStorage  bool
	Notes         string
	AssignedTo    *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Staff is a staff member who can own leads.
type Staff struct {
	ID       uuid.UUID
	Name     string
	Email    string
	IsActive bool
}

type CreateLeadParams struct {
	FirstName     string
	LastName      string
	Email         *string
	Phone         *string
	Source        domain.Source
	ExternalRef   string
	MoveDate      *time.Time
	FromAddress   string
	FromPostcode  string
	ToAddress     string
	ToPostcode    string
	PropertyType  string
	Bedrooms      *int
	DistanceMiles *float64
	NeedsPacking  bool
	NeedsStorage  bool
	Notes         string
}

type ListParams struct {
	Status     *domain.Status
	AssignedTo *uuid.UUID
	Limit      int
	Offset     int
}

const leadColumns = `id, first_name, last_name, email, phone, source, external_ref,
	status, contact_status, move_date, from_address, from_postcode, to_address, to_postcode,
	property_type, bedrooms, distance_miles, needs_packing, needs_storage, notes,
	assigned_to, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Source, &l.ExternalRef,
		&l.Status, &l.ContactStatus, &l.MoveDate, &l.FromAddress, &l.FromPostcode,
		&l.ToAddress, &l.ToPostcode, &l.PropertyType, &l.Bedrooms, &l.DistanceMiles,
		&l.NeedsPacking, &l.NeedsStorage, &l.Notes, &l.AssignedTo, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

// Create inserts a new lead. The unique index on lower(email) makes racing
// duplicate creates fail with ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (first_name, last_name, email, phone, source, external_ref,
			move_date, from_address, from_postcode, to_address, to_postcode,
			property_type, bedrooms, distance_miles, needs_packing, needs_storage, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING `+leadColumns,
		params.FirstName, params.LastName, params.Email, params.Phone,
		string(params.Source), params.ExternalRef, params.MoveDate,
		params.FromAddress, params.FromPostcode, params.ToAddress, params.ToPostcode,
		params.PropertyType, params.Bedrooms, params.DistanceMiles,
		params.NeedsPacking, params.NeedsStorage, params.Notes,
	)

	lead, err := scanLead(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Lead{}, ErrDuplicateEmail
		}
		return Lead{}, err
	}
	return lead, nil
}

// GetByID retrieves a lead by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// FindByEmail looks up a lead by email, case-insensitively.
// Returns (nil, nil) when no lead matches.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Lead, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}

	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE lower(email) = $1`, email)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// FindByPhone looks up a lead by exact phone match.
// Returns (nil, nil) when no lead matches.
func (r *Repository) FindByPhone(ctx context.Context, phoneNumber string) (*Lead, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return nil, nil
	}

	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE phone = $1`, phoneNumber)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// List returns leads matching the filter plus the total count.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	where := []string{"true"}
	args := []any{}

	if params.Status != nil {
		args = append(args, string(*params.Status))
		where = append(where, "status = $"+itoa(len(args)))
	}
	if params.AssignedTo != nil {
		args = append(args, *params.AssignedTo)
		where = append(where, "assigned_to = $"+itoa(len(args)))
	}

	clause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM leads WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, params.Offset)
	query := `SELECT ` + leadColumns + ` FROM leads WHERE ` + clause +
		` ORDER BY created_at DESC LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	return leads, total, rows.Err()
}

// UpdateStatus sets a lead's status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns, id, string(status))
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// SetOwner sets (or clears) a lead's owner.
func (r *Repository) SetOwner(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET assigned_to = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns, id, ownerID)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// CountByOwnerAndStatus counts an owner's leads in the given status.
func (r *Repository) CountByOwnerAndStatus(ctx context.Context, ownerID uuid.UUID, status domain.Status) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM leads WHERE assigned_to = $1 AND status = $2
	`, ownerID, string(status)).Scan(&count)
	return count, err
}

// CountByOwner counts all of an owner's leads.
func (r *Repository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM leads WHERE assigned_to = $1
	`, ownerID).Scan(&count)
	return count, err
}

// FindActiveStaff returns active staff members ordered by name.
// The stable order keeps round-robin tie-breaking deterministic.
func (r *Repository) FindActiveStaff(ctx context.Context) ([]Staff, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, is_active FROM users
		WHERE is_active = true
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []Staff
	for rows.Next() {
		var s Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.IsActive); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

// GetStaff retrieves a staff member by ID.
func (r *Repository) GetStaff(ctx context.Context, id uuid.UUID) (Staff, error) {
	var s Staff
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, is_active FROM users WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Email, &s.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return Staff{}, ErrNotFound
	}
	return s, err
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
