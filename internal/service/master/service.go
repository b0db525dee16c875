package master

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/master/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/master/shift"
)

type MasterService interface {
	// Permitted location operations
	CreateLocation(ctx context.Context, req location.CreateLocationRequest) (location.LocationResponse, error)
	GetLocation(ctx context.Context, id string) (location.LocationResponse, error)
	ListLocations(ctx context.Context) ([]location.LocationResponse, error)
	UpdateLocation(ctx context.Context, req location.UpdateLocationRequest) (location.LocationResponse, error)
	DeleteLocation(ctx context.Context, id string) error

	// Work shift operations
	CreateShift(ctx context.Context, req shift.CreateShiftRequest) (shift.ShiftResponse, error)
	GetShift(ctx context.Context, id string) (shift.ShiftResponse, error)
	ListShifts(ctx context.Context) ([]shift.ShiftResponse, error)
	UpdateShift(ctx context.Context, req shift.UpdateShiftRequest) (shift.ShiftResponse, error)
	DeleteShift(ctx context.Context, id string) error
}

type masterServiceImpl struct {
	locationRepo location.LocationRepository
	shiftRepo    shift.ShiftRepository
}

func NewMasterService(
	locationRepo location.LocationRepository,
	shiftRepo shift.ShiftRepository,
) MasterService {
	return &masterServiceImpl{
		locationRepo: locationRepo,
		shiftRepo:    shiftRepo,
	}
}

// ==================== LOCATION OPERATIONS ====================

func (s *masterServiceImpl) CreateLocation(ctx context.Context, req location.CreateLocationRequest) (location.LocationResponse, error) {
	if err := req.Validate(); err != nil {
		return location.LocationResponse{}, err
	}

	created, err := s.locationRepo.Create(ctx, location.PermittedLocation{
		Name:         req.Name,
		Address:      req.Address,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		RadiusMeters: req.RadiusMeters,
	})
	if err != nil {
		return location.LocationResponse{}, fmt.Errorf("failed to create location: %w", err)
	}
	return location.ToResponse(created), nil
}

func (s *masterServiceImpl) GetLocation(ctx context.Context, id string) (location.LocationResponse, error) {
	l, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		return location.LocationResponse{}, err
	}
	return location.ToResponse(l), nil
}

func (s *masterServiceImpl) ListLocations(ctx context.Context) ([]location.LocationResponse, error) {
	locations, err := s.locationRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]location.LocationResponse, 0, len(locations))
	for _, l := range locations {
		responses = append(responses, location.ToResponse(l))
	}
	return responses, nil
}

func (s *masterServiceImpl) UpdateLocation(ctx context.Context, req location.UpdateLocationRequest) (location.LocationResponse, error) {
	if err := req.Validate(); err != nil {
		return location.LocationResponse{}, err
	}

	existing, err := s.locationRepo.GetByID(ctx, req.ID)
	if err != nil {
		return location.LocationResponse{}, err
	}
	req.Apply(&existing)

	updated, err := s.locationRepo.Update(ctx, existing)
	if err != nil {
		return location.LocationResponse{}, fmt.Errorf("failed to update location: %w", err)
	}
	return location.ToResponse(updated), nil
}

// DeleteLocation refuses while any employee is still assigned to the location.
func (s *masterServiceImpl) DeleteLocation(ctx context.Context, id string) error {
	return s.locationRepo.Delete(ctx, id)
}

// ==================== SHIFT OPERATIONS ====================

func (s *masterServiceImpl) CreateShift(ctx context.Context, req shift.CreateShiftRequest) (shift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	created, err := s.shiftRepo.Create(ctx, shift.WorkShift{
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return shift.ShiftResponse{}, fmt.Errorf("failed to create shift: %w", err)
	}
	return shift.ToResponse(created), nil
}

func (s *masterServiceImpl) GetShift(ctx context.Context, id string) (shift.ShiftResponse, error) {
	ws, err := s.shiftRepo.GetByID(ctx, id)
	if err != nil {
		return shift.ShiftResponse{}, err
	}
	return shift.ToResponse(ws), nil
}

func (s *masterServiceImpl) ListShifts(ctx context.Context) ([]shift.ShiftResponse, error) {
	shifts, err := s.shiftRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]shift.ShiftResponse, 0, len(shifts))
	for _, ws := range shifts {
		responses = append(responses, shift.ToResponse(ws))
	}
	return responses, nil
}

func (s *masterServiceImpl) UpdateShift(ctx context.Context, req shift.UpdateShiftRequest) (shift.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.ShiftResponse{}, err
	}

	existing, err := s.shiftRepo.GetByID(ctx, req.ID)
	if err != nil {
		return shift.ShiftResponse{}, err
	}
	req.Apply(&existing)
	if existing.StartTime == existing.EndTime {
		return shift.ShiftResponse{}, shift.ErrShiftInvalid
	}

	updated, err := s.shiftRepo.Update(ctx, existing)
	if err != nil {
		return shift.ShiftResponse{}, fmt.Errorf("failed to update shift: %w", err)
	}
	return shift.ToResponse(updated), nil
}

func (s *masterServiceImpl) DeleteShift(ctx context.Context, id string) error {
	return s.shiftRepo.Delete(ctx, id)
}
