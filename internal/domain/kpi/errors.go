package kpi

import "errors"

var ErrNotFound = errors.New("kpi not found")
