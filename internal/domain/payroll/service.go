package payroll

import (
	"context"
	"io"
)

type PayrollService interface {
	AddComponent(ctx context.Context, req AddComponentRequest) (ComponentResponse, error)
	ListComponents(ctx context.Context, employeeID string) ([]ComponentResponse, error)
	DeleteComponent(ctx context.Context, employeeID, id string) error

	Generate(ctx context.Context, req GenerateSlipRequest) (SlipResponse, error)
	Get(ctx context.Context, id string) (SlipResponse, error)
	List(ctx context.Context, filter SlipFilter) (ListSlipResponse, error)
	ListMine(ctx context.Context, filter SlipFilter) (ListSlipResponse, error)
	Publish(ctx context.Context, id string) (SlipResponse, error)
	// RenderPDF writes the slip as a PDF document and returns a file name.
	RenderPDF(ctx context.Context, id string, w io.Writer) (string, error)
}
