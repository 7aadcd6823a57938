package api

import (
	"context"

	"github.com/publiflow/publiflow-client/internal/model"
)

// Adapters bridging endpoints to the list engine. The feed endpoint already
// matches the engine's page signature (Client.Feed); the administrative
// endpoints are unpaginated, so their adapters present the full result as a
// single page and ignore the requested page and query.

// AdminPostsPage adapts the unpaginated admin post list.
func AdminPostsPage(c *Client) func(context.Context, int, int, string) (model.Page[model.Post], error) {
	return func(ctx context.Context, _, _ int, _ string) (model.Page[model.Post], error) {
		items, err := c.Posts(ctx)
		if err != nil {
			return model.Page[model.Post]{}, err
		}
		return singlePage(items), nil
	}
}

// AdminUsersPage adapts the unpaginated user-by-role list.
func AdminUsersPage(c *Client, roleID int) func(context.Context, int, int, string) (model.Page[model.AdminUser], error) {
	return func(ctx context.Context, _, _ int, _ string) (model.Page[model.AdminUser], error) {
		items, err := c.UsersByRole(ctx, roleID)
		if err != nil {
			return model.Page[model.AdminUser]{}, err
		}
		return singlePage(items), nil
	}
}

func singlePage[T any](items []T) model.Page[T] {
	return model.Page[T]{
		Items: items,
		Meta: model.PageMeta{
			CurrentPage:  1,
			TotalPages:   1,
			TotalItems:   len(items),
			ItemsPerPage: len(items),
		},
	}
}
