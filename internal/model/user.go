package model

// Role is the caller's role resolved from the bearer token
type Role string

const (
	RoleCustomer Role = "customer"
	RoleWorker   Role = "worker"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleWorker, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// User is the subset of an account the booking engine reads
type User struct {
	ID       string `bson:"_id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Role     Role   `bson:"role" json:"role"`
	IsActive bool   `bson:"is_active" json:"isActive"`
}
