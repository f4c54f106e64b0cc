// Copyright (c) 2026 Campora. All rights reserved.

package student

import "context"

// Repository is the data access contract for student records.
type Repository interface {
	List(context context.Context, filter Filter, limit, offset int) ([]*Student, int, error)
	FindByID(context context.Context, id string) (*Student, error)
	FindByIdentityID(context context.Context, identityID string) (*Student, error)
	Create(context context.Context, student *Student) error
	Update(context context.Context, student *Student) error
	SoftDelete(context context.Context, id string) error
}
