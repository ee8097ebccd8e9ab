package dataset

import "errors"

// ErrInvalidDataset wraps every validation failure of the recipe file.
var ErrInvalidDataset = errors.New("invalid dataset")
