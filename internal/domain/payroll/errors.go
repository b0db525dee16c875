package payroll

import "errors"

var (
	ErrSlipNotFound         = errors.New("payroll slip not found")
	ErrSlipAlreadyPublished = errors.New("payroll slip is already published")
	ErrComponentNotFound    = errors.New("payroll component not found")
)
