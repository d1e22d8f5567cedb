package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nivora-be/internal/dto"
	"nivora-be/internal/entity"
	"nivora-be/internal/pkg/serverutils"
	"nivora-be/internal/repository/memory"
	"nivora-be/internal/repository/specification"
	"nivora-be/internal/repository/unitofwork"
	"nivora-be/pkg/events"
	pktNats "nivora-be/pkg/nats"
	"nivora-be/pkg/projection"
	"nivora-be/pkg/sanitize"

	"github.com/google/uuid"
)

const defaultBgColor = "#ffffff"

const noteDateLayout = "2006-01-02"

type INoteService interface {
	List(ctx context.Context, userId uuid.UUID, q *dto.ListNotesQuery) ([]*dto.NoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	ToggleFavorite(ctx context.Context, userId uuid.UUID, req *dto.ToggleFavoriteRequest) error
	TogglePin(ctx context.Context, userId uuid.UUID, req *dto.TogglePinRequest) error
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	cache            *memory.NoteCache
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	cache *memory.NoteCache,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		cache:            cache,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
	}
}

// List returns the user's notes projected through the transient view state.
// The full owned collection is cached per user; mutations invalidate it, so
// a read after a successful mutation always observes that mutation.
func (c *noteService) List(ctx context.Context, userId uuid.UUID, q *dto.ListNotesQuery) ([]*dto.NoteResponse, error) {
	if userId == uuid.Nil {
		return []*dto.NoteResponse{}, nil
	}

	notes, found := c.cache.Get(userId)
	if !found {
		uow := c.uowFactory.NewUnitOfWork(ctx)
		fetched, err := uow.NoteRepository().FindAll(ctx,
			specification.OwnedByUser{UserID: userId},
			specification.PinnedFirst{},
		)
		if err != nil {
			return nil, serverutils.NewGatewayError(err)
		}
		for _, n := range fetched {
			sanitizeNote(n)
		}
		c.cache.Set(userId, fetched)
		notes = fetched
	}

	query := projection.Query{}
	if q != nil {
		query = projection.Query{
			Search:   q.Search,
			Category: projection.ParseCategory(q.Category),
			Sort:     projection.ParseSortKey(q.Sort),
		}
	}

	projected := projection.Project(notes, query)

	res := make([]*dto.NoteResponse, len(projected))
	for i, n := range projected {
		res[i] = toNoteResponse(n)
	}
	return res, nil
}

func (c *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error) {
	if userId == uuid.Nil {
		return nil, serverutils.NewUnauthorizedError("not authenticated")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, serverutils.NewGatewayError(err)
	}
	if note == nil {
		return nil, serverutils.NewNotFoundError("note not found")
	}

	sanitizeNote(note)
	return toNoteResponse(note), nil
}

func (c *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	if userId == uuid.Nil {
		return nil, serverutils.NewUnauthorizedError("not authenticated")
	}

	title := sanitize.Title(req.Title)
	if strings.TrimSpace(title) == "" {
		return nil, serverutils.NewValidationError("title must not be empty")
	}

	content := sanitize.Content(req.Content)
	if content == nil {
		empty := ""
		content = &empty
	}

	bgColor := req.BgColor
	if bgColor == "" {
		bgColor = defaultBgColor
	}

	noteDate := time.Now().Truncate(24 * time.Hour)
	if req.NoteDate != "" {
		parsed, err := time.Parse(noteDateLayout, req.NoteDate)
		if err != nil {
			return nil, serverutils.NewValidationError("note_date must be YYYY-MM-DD")
		}
		noteDate = parsed
	}

	tags := sanitize.Tags(req.Tags)
	if tags == nil {
		tags = []string{}
	}

	note := entity.Note{
		Id:         uuid.New(),
		UserId:     userId,
		Title:      title,
		Content:    content,
		BgColor:    bgColor,
		BgImageUrl: req.BgImageUrl,
		IsFavorite: req.IsFavorite,
		IsPinned:   req.IsPinned,
		Tags:       tags,
		NoteDate:   noteDate,
		CreatedAt:  time.Now(),
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		// Cache untouched: a failed mutation never corrupts displayed state.
		return nil, serverutils.NewGatewayError(err)
	}

	c.cache.Invalidate(userId)
	c.publishEvent(ctx, events.TypeNoteCreated, userId, note.Id, note.Title, "Note created successfully")
	c.publishActivity(ctx, "note.created", userId, note.Id)

	return &dto.CreateNoteResponse{
		Id: note.Id,
	}, nil
}

func (c *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error) {
	if userId == uuid.Nil {
		return nil, serverutils.NewUnauthorizedError("not authenticated")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, serverutils.NewGatewayError(err)
	}
	if note == nil {
		return nil, serverutils.NewNotFoundError("note not found")
	}

	// Clean the stored row before patching: a legacy marker in a field the
	// client did not touch must still be gone after the save.
	sanitizeNote(note)

	if req.Title != nil {
		title := sanitize.Title(*req.Title)
		if strings.TrimSpace(title) == "" {
			return nil, serverutils.NewValidationError("title must not be empty")
		}
		note.Title = title
	}
	if req.Content != nil {
		note.Content = sanitize.Content(req.Content)
	}
	if req.BgColor != nil {
		note.BgColor = *req.BgColor
		if note.BgColor == "" {
			note.BgColor = defaultBgColor
		}
	}
	if req.BgImageUrl != nil {
		note.BgImageUrl = req.BgImageUrl
	}
	if req.IsFavorite != nil {
		note.IsFavorite = *req.IsFavorite
	}
	if req.IsPinned != nil {
		note.IsPinned = *req.IsPinned
	}
	if req.Tags != nil {
		tags := sanitize.Tags(*req.Tags)
		if tags == nil {
			tags = []string{}
		}
		note.Tags = tags
	}
	if req.NoteDate != nil {
		parsed, err := time.Parse(noteDateLayout, *req.NoteDate)
		if err != nil {
			return nil, serverutils.NewValidationError("note_date must be YYYY-MM-DD")
		}
		note.NoteDate = parsed
	}

	now := time.Now()
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, serverutils.NewGatewayError(err)
	}

	c.cache.Invalidate(userId)
	c.publishEvent(ctx, events.TypeNoteUpdated, userId, note.Id, note.Title, "Note updated successfully")
	c.publishActivity(ctx, "note.updated", userId, note.Id)

	return &dto.UpdateNoteResponse{
		Id: note.Id,
	}, nil
}

func (c *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	if userId == uuid.Nil {
		return serverutils.NewUnauthorizedError("not authenticated")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return serverutils.NewGatewayError(err)
	}
	if note == nil {
		// Deleting an unknown or non-owned id is an error, never a no-op.
		return serverutils.NewNotFoundError("note not found")
	}

	if err := uow.NoteRepository().Delete(ctx, id); err != nil {
		return serverutils.NewGatewayError(err)
	}

	c.cache.Invalidate(userId)
	c.publishEvent(ctx, events.TypeNoteDeleted, userId, id, note.Title, "Note deleted successfully")
	c.publishActivity(ctx, "note.deleted", userId, id)

	return nil
}

// ToggleFavorite flips the favorite flag. No notification event is emitted
// for toggles so rapid clicking doesn't flood the inbox.
func (c *noteService) ToggleFavorite(ctx context.Context, userId uuid.UUID, req *dto.ToggleFavoriteRequest) error {
	return c.toggleFlag(ctx, userId, req.Id, "note.favorite_toggled", func(n *entity.Note) {
		n.IsFavorite = !req.IsFavorite
	})
}

// TogglePin flips the pinned flag, same contract as ToggleFavorite.
func (c *noteService) TogglePin(ctx context.Context, userId uuid.UUID, req *dto.TogglePinRequest) error {
	return c.toggleFlag(ctx, userId, req.Id, "note.pin_toggled", func(n *entity.Note) {
		n.IsPinned = !req.IsPinned
	})
}

func (c *noteService) toggleFlag(ctx context.Context, userId uuid.UUID, id uuid.UUID, action string, apply func(*entity.Note)) error {
	if userId == uuid.Nil {
		return serverutils.NewUnauthorizedError("not authenticated")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return serverutils.NewGatewayError(err)
	}
	if note == nil {
		return serverutils.NewNotFoundError("note not found")
	}

	sanitizeNote(note)
	apply(note)
	now := time.Now()
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return serverutils.NewGatewayError(err)
	}

	c.cache.Invalidate(userId)
	c.publishActivity(ctx, action, userId, id)

	return nil
}

func (c *noteService) publishEvent(ctx context.Context, eventType string, userId, noteId uuid.UUID, title, message string) {
	if c.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"user_id": userId.String(),
			"note_id": noteId.String(),
			"title":   title,
			"message": message,
		},
		OccurredAt: time.Now(),
	}
	// Notifications are auxiliary; a bus failure never fails the request.
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		fmt.Printf("[WARN] Failed to publish %s event: %v\n", eventType, err)
	}
}

func (c *noteService) publishActivity(ctx context.Context, action string, userId, entityId uuid.UUID) {
	if c.publisherService == nil {
		return
	}
	msg := dto.ActivityMessage{
		Action:     action,
		UserId:     userId,
		EntityId:   entityId,
		OccurredAt: time.Now(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := c.publisherService.Publish(ctx, payload); err != nil {
		fmt.Printf("[WARN] Failed to publish activity %s: %v\n", action, err)
	}
}

func sanitizeNote(n *entity.Note) {
	n.Title = sanitize.Title(n.Title)
	n.Content = sanitize.Content(n.Content)
	n.Tags = sanitize.Tags(n.Tags)
}

func toNoteResponse(n *entity.Note) *dto.NoteResponse {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return &dto.NoteResponse{
		Id:         n.Id,
		UserId:     n.UserId,
		Title:      n.Title,
		Content:    n.Content,
		BgColor:    n.BgColor,
		BgImageUrl: n.BgImageUrl,
		IsFavorite: n.IsFavorite,
		IsPinned:   n.IsPinned,
		Tags:       tags,
		NoteDate:   n.NoteDate.Format(noteDateLayout),
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}
