// Package crud composes the paginated fetcher with a staged delete workflow
// for the administrative lists.
package crud

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/publiflow/publiflow-client/internal/api"
	"github.com/publiflow/publiflow-client/internal/errs"
	"github.com/publiflow/publiflow-client/internal/pager"
)

// DeleteFunc removes one resource by id on the remote service.
type DeleteFunc func(ctx context.Context, id int64) error

// Controller drives one administrative list: the underlying fetcher plus a
// single staged deletion, matching a one-confirmation-dialog UI model.
type Controller[T any] struct {
	fetcher *pager.Fetcher[T]
	remove  DeleteFunc
	log     *zap.Logger

	mu     sync.Mutex
	staged int64
	armed  bool
}

// NewController constructs a Controller over an existing fetcher.
func NewController[T any](fetcher *pager.Fetcher[T], remove DeleteFunc, log *zap.Logger) *Controller[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller[T]{fetcher: fetcher, remove: remove, log: log}
}

// Fetcher exposes the underlying list engine.
func (c *Controller[T]) Fetcher() *pager.Fetcher[T] { return c.fetcher }

// RequestDelete stages id for deletion without touching the remote service.
// Staging a new id replaces a previously staged one.
func (c *Controller[T]) RequestDelete(id int64) {
	c.mu.Lock()
	c.staged = id
	c.armed = true
	c.mu.Unlock()
}

// CancelDelete clears the staged id without any network call.
func (c *Controller[T]) CancelDelete() {
	c.mu.Lock()
	c.staged = 0
	c.armed = false
	c.mu.Unlock()
}

// StagedID returns the staged id, if any.
func (c *Controller[T]) StagedID() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staged, c.armed
}

// ConfirmDelete deletes the staged resource. On success it triggers exactly
// one refresh of the list; on failure the list state is left untouched until
// a later refresh succeeds. The staged id is cleared on both paths.
func (c *Controller[T]) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if !c.armed {
		c.mu.Unlock()
		return nil
	}
	id := c.staged
	c.staged = 0
	c.armed = false
	c.mu.Unlock()

	if err := c.remove(ctx, id); err != nil {
		c.log.Warn("delete failed", zap.Int64("id", id), zap.Error(err))
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return fmt.Errorf("%w: %s", errs.ErrMutationFailed, apiErr.Message)
		}
		return fmt.Errorf("%w: %v", errs.ErrMutationFailed, err)
	}
	c.log.Info("deleted", zap.Int64("id", id))
	c.fetcher.Refresh(ctx)
	return nil
}
