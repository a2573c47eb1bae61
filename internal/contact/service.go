package contact

import (
	"context"
	"strings"

	"backend-safewalk/internal/db"
	"backend-safewalk/internal/notify"
	"backend-safewalk/internal/shared/apperr"

	"github.com/google/uuid"
)

var ErrNotFound = apperr.NotFound("contact not found")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, userID string, input Contact) (Contact, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Value = strings.TrimSpace(input.Value)
	if input.Channel == "" {
		input.Channel = notify.ChannelSMS
	}
	if input.Name == "" || input.Value == "" {
		return Contact{}, apperr.Invalid("name and value required")
	}
	if !notify.ValidChannel(input.Channel) {
		return Contact{}, apperr.Invalid("channel must be sms or email")
	}

	input.ID = uuid.NewString()
	input.UserID = userID
	row := s.db.QueryRow(ctx, `
		INSERT INTO trusted_contacts (id, user_id, name, avatar, channel, value)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, input.ID, input.UserID, input.Name, input.Avatar, input.Channel, input.Value)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Contact{}, apperr.Wrap("insert contact", err)
	}
	return input, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Contact, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, avatar, channel, value, created_at
		FROM trusted_contacts WHERE user_id=$1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, apperr.Wrap("list contacts", err)
	}
	defer rows.Close()

	contacts := []Contact{}
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Avatar, &c.Channel, &c.Value, &c.CreatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM trusted_contacts WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return apperr.Wrap("delete contact", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
