// Copyright (c) 2026 Campora. All rights reserved.

package faculty

import "context"

// Repository is the data access contract for faculty records.
type Repository interface {
	List(context context.Context, filter Filter, limit, offset int) ([]*Faculty, int, error)
	FindByID(context context.Context, id string) (*Faculty, error)
	FindByIdentityID(context context.Context, identityID string) (*Faculty, error)
	Create(context context.Context, faculty *Faculty) error
	Update(context context.Context, faculty *Faculty) error
	SoftDelete(context context.Context, id string) error
}
