package auth

import (
	"fmt"

	"github.com/fekuna/omnipos-stock-service/internal/model"
)

type Action string

const (
	ActionViewCatalog     Action = "catalog:view"
	ActionManageCatalog   Action = "catalog:manage"
	ActionViewInventory   Action = "inventory:view"
	ActionManageInventory Action = "inventory:manage"
	ActionViewRequests    Action = "requests:view"
	ActionCreateRequest   Action = "requests:create"
	ActionEditRequest     Action = "requests:edit"
	ActionCancelRequest   Action = "requests:cancel"
	ActionAcceptRequest   Action = "requests:accept"
	ActionRejectRequest   Action = "requests:reject"
	ActionShipRequest     Action = "requests:ship"
	ActionDeleteRequest   Action = "requests:delete"
	ActionFulfill         Action = "fulfillment:run"
	ActionManageUsers     Action = "users:manage"
)

// Authorize decides whether actor may perform action. storeLocation is the
// store the action targets and only matters for store managers; pass "" for
// actions that are not tied to a store.
func Authorize(actor *Actor, action Action, storeLocation string) error {
	if actor == nil {
		return fmt.Errorf("%w: no authenticated user", model.ErrForbidden)
	}

	switch actor.Role {
	case model.RoleAdmin:
		return nil

	case model.RoleWarehouseManager:
		switch action {
		case ActionViewCatalog, ActionManageCatalog,
			ActionViewInventory, ActionManageInventory,
			ActionViewRequests, ActionAcceptRequest, ActionRejectRequest,
			ActionShipRequest, ActionDeleteRequest, ActionFulfill:
			return nil
		}

	case model.RoleStoreManager:
		switch action {
		case ActionViewCatalog, ActionViewInventory:
			return nil
		case ActionViewRequests, ActionCreateRequest, ActionEditRequest, ActionCancelRequest:
			if actor.StoreLocation == "" {
				return fmt.Errorf("%w: store manager has no store location", model.ErrForbidden)
			}
			if storeLocation == "" || storeLocation == actor.StoreLocation {
				return nil
			}
			return fmt.Errorf("%w: %s belongs to another store", model.ErrForbidden, action)
		}

	default:
		return fmt.Errorf("%w: unknown role %q", model.ErrForbidden, actor.Role)
	}

	return fmt.Errorf("%w: role %s may not %s", model.ErrForbidden, actor.Role, action)
}
