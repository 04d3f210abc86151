package product

import "relytailors-be/internal/apperror"

var ErrProductNotFound = apperror.NotFound("Product not found")
