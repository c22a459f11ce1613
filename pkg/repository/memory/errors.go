package memory

import "github.com/taller-iot/marcaje/pkg/domain/model"

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = model.ErrNotFound
