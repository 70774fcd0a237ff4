// Package studios drives the studio collection lifecycle: list, fetch,
// create, update and delete, each applied to the shared state store as a
// pending transition followed by a fulfilled or rejected one.
package studios

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/five82/booth/internal/apiclient"
	"github.com/five82/booth/internal/market"
	"github.com/five82/booth/internal/state"
)

// StudioService is the subset of market.StudioAPI the controller needs.
type StudioService interface {
	List(ctx context.Context, filters market.StudioFilters) ([]market.Studio, error)
	Get(ctx context.Context, id string) (market.Studio, error)
	Create(ctx context.Context, input market.StudioInput) (market.Studio, error)
	Update(ctx context.Context, id string, input market.StudioInput) (market.Studio, error)
	Delete(ctx context.Context, id string) error
}

// Controller applies studio transitions to the store.
type Controller struct {
	api    StudioService
	store  *state.Store
	logger *slog.Logger
}

// New builds a Controller.
func New(api StudioService, store *state.Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{api: api, store: store, logger: logger.With("component", "studios")}
}

// List replaces the collection with the studios matching filters.
func (c *Controller) List(ctx context.Context, filters market.StudioFilters) error {
	c.store.UpdateStudios(state.Studios.Pending)
	items, err := c.api.List(ctx, filters)
	if err != nil {
		return c.reject("list", err)
	}
	c.store.UpdateStudios(func(s state.Studios) state.Studios { return s.Listed(items) })
	c.logger.Debug("studios listed", "count", len(items), "filters", filters.Values().Encode())
	return nil
}

// Get loads one studio as the current studio.
func (c *Controller) Get(ctx context.Context, id string) error {
	c.store.UpdateStudios(state.Studios.Pending)
	item, err := c.api.Get(ctx, id)
	if err != nil {
		return c.reject("get", err)
	}
	c.store.UpdateStudios(func(s state.Studios) state.Studios { return s.Fetched(item) })
	return nil
}

// Create validates input, submits it and appends the stored record. Invalid
// input is rejected without a request.
func (c *Controller) Create(ctx context.Context, input market.StudioInput) (market.Studio, error) {
	input = normalize(input)
	if err := market.Validate(input); err != nil {
		c.store.UpdateStudios(func(s state.Studios) state.Studios { return s.Rejected(apiclient.Message(err)) })
		return market.Studio{}, err
	}
	c.store.UpdateStudios(state.Studios.Pending)
	item, err := c.api.Create(ctx, input)
	if err != nil {
		return market.Studio{}, c.reject("create", err)
	}
	c.store.UpdateStudios(func(s state.Studios) state.Studios { return s.Created(item) })
	c.logger.Info("studio created", "id", item.ID, "name", item.Name)
	return item, nil
}

// Update validates input, submits it and replaces the matching item.
func (c *Controller) Update(ctx context.Context, id string, input market.StudioInput) (market.Studio, error) {
	input = normalize(input)
	if err := market.Validate(input); err != nil {
		c.store.UpdateStudios(func(s state.Studios) state.Studios { return s.Rejected(apiclient.Message(err)) })
		return market.Studio{}, err
	}
	c.store.UpdateStudios(state.Studios.Pending)
	item, err := c.api.Update(ctx, id, input)
	if err != nil {
		return market.Studio{}, c.reject("update", err)
	}
	if item.ID == "" {
		item.ID = id
	}
	c.store.UpdateStudios(func(s state.Studios) state.Studios { return s.Updated(item) })
	c.logger.Info("studio updated", "id", item.ID)
	return item, nil
}

// Delete removes every item with id.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.store.UpdateStudios(state.Studios.Pending)
	if err := c.api.Delete(ctx, id); err != nil {
		return c.reject("delete", err)
	}
	c.store.UpdateStudios(func(s state.Studios) state.Studios { return s.Deleted(id) })
	c.logger.Info("studio deleted", "id", id)
	return nil
}

// ClearCurrent drops the current studio.
func (c *Controller) ClearCurrent() {
	c.store.UpdateStudios(state.Studios.ClearCurrent)
}

// ClearError drops the last studio error.
func (c *Controller) ClearError() {
	c.store.UpdateStudios(state.Studios.ClearError)
}

// reject records err and returns it, converted to a *apiclient.ValidationError
// when the service reported field problems.
func (c *Controller) reject(op string, err error) error {
	if verr, ok := apiclient.ValidationFromStatus(err); ok {
		err = verr
	}
	msg := apiclient.Message(err)
	c.store.UpdateStudios(func(s state.Studios) state.Studios { return s.Rejected(msg) })
	if errors.Is(err, apiclient.ErrSessionExpired) {
		c.logger.Warn(op+" aborted, session expired")
	} else {
		c.logger.Info(op+" failed", "error", err)
	}
	return err
}

func normalize(in market.StudioInput) market.StudioInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	in.ContactEmail = strings.TrimSpace(in.ContactEmail)
	in.ContactPhone = strings.TrimSpace(in.ContactPhone)
	in.Image = strings.TrimSpace(in.Image)
	in.Amenities = market.ParseAmenities(strings.Join(in.Amenities, ","))
	return in
}
