package model

type Role string

const (
	RoleAdmin            Role = "admin"
	RoleWarehouseManager Role = "warehouse-manager"
	RoleStoreManager     Role = "store-manager"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWarehouseManager, RoleStoreManager:
		return true
	}
	return false
}

type User struct {
	BaseModel
	Name          string  `db:"name" json:"name"`
	Email         string  `db:"email" json:"email"`
	Role          Role    `db:"role" json:"role"`
	StoreLocation *string `db:"store_location" json:"storeLocation"`
	PasswordHash  *string `db:"password_hash" json:"-"`
}
