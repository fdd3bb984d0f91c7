package service

import (
	"context"
	"errors"

	catalogerrors "shopbooking/internal/catalog/errors"
	"shopbooking/internal/catalog/repository"
	"shopbooking/internal/catalog/validator"
	mongotx "shopbooking/pkg/db/mongo"
	apperrors "shopbooking/pkg/errors"
	"shopbooking/pkg/model"
)

type orderedItem interface {
	Ordering() (string, int)
}

// move swaps the item's order with its neighbour in one transaction. An item
// already at the edge stays where it is.
func move[T any, P interface {
	*T
	orderedItem
}](ctx context.Context, repo repository.Repository[T], id string, dir model.MoveDirection) error {
	return repo.ExecuteTransaction(ctx, func(ctx context.Context) error {
		item, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		_, order := P(item).Ordering()

		neighbour, err := repo.Neighbour(ctx, order, dir)
		if errors.Is(err, catalogerrors.ErrNoNeighbour) {
			return nil
		}
		if err != nil {
			return err
		}
		neighbourID, neighbourOrder := P(neighbour).Ordering()

		if err := repo.SetOrder(ctx, id, neighbourOrder); err != nil {
			return err
		}
		return repo.SetOrder(ctx, neighbourID, order)
	})
}

func validDirection(dir model.MoveDirection) error {
	if dir != model.MoveUp && dir != model.MoveDown {
		return apperrors.InvalidInput("direction must be 'up' or 'down'")
	}
	return nil
}

func translateError(resource, id, message string, err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, catalogerrors.ErrNotFound) {
		return apperrors.NotFoundWithID(resource, id)
	}
	if mongotx.IsConflict(err) {
		return apperrors.Conflict(resource + " order changed concurrently, please retry")
	}
	if mongotx.IsUnavailable(err) {
		return apperrors.StoreUnavailable(err)
	}
	return apperrors.Internal(message, err)
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
