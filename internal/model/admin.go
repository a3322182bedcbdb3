package model

import "time"

// AdminUser represents a staff account as stored in the `admin_users`
// table.  Staff accounts exist so that console actions (confirming a
// booking, marking a payment, issuing a refund) are authenticated; normal
// customers never log in to this service.  The json tags are omitted here
// because these structs are used internally by the repository layer;
// handlers define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the staff account.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name (ADMIN or ACCOUNTANT).
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
type AdminUser struct {
    ID           uint64    // admin_users.id
    Email        string    // admin_users.email
    PasswordHash string    // admin_users.password_hash
    Role         string    // admin_users.role
    IsActive     bool      // admin_users.is_active
    CreatedAt    time.Time // admin_users.created_at
}

// Staff roles.  ADMIN may do everything; ACCOUNTANT is limited to
// payment-related actions and reporting.
const (
    RoleAdmin      = "ADMIN"
    RoleAccountant = "ACCOUNTANT"
)
