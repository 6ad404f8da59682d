package services

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/constants"
	"buddhist-lent/pledgeboard/internal/db/repositories"
	"buddhist-lent/pledgeboard/internal/logging"
	"buddhist-lent/pledgeboard/internal/metrics"
	"buddhist-lent/pledgeboard/internal/models/dtos"
	gormModels "buddhist-lent/pledgeboard/internal/models/gorm"
	"buddhist-lent/pledgeboard/internal/storage"
	"buddhist-lent/pledgeboard/internal/validation"
)

// FormImages are the scanned pages of a form return. On update either may be
// nil to keep the stored image.
type FormImages struct {
	Image1 io.Reader
	Image2 io.Reader
}

type FormReturnService struct {
	forms    *repositories.FormReturnRepository
	uploader *storage.Uploader
	cache    *common.ListCache
	metrics  *metrics.MetricsRegistry
}

func NewFormReturnService(
	forms *repositories.FormReturnRepository,
	uploader *storage.Uploader,
	cache *common.ListCache,
	metricsReg *metrics.MetricsRegistry,
) *FormReturnService {
	return &FormReturnService{
		forms:    forms,
		uploader: uploader,
		cache:    cache,
		metrics:  metricsReg,
	}
}

func (s *FormReturnService) List(ctx context.Context, v url.Values) (*dtos.ListResponse[dtos.FormReturnResponse], error) {
	variant := v.Encode()
	var cached dtos.ListResponse[dtos.FormReturnResponse]
	slot, hit := s.cache.Get(ctx, constants.ResourceFormReturns, variant, &cached)
	if hit {
		return &cached, nil
	}

	p, err := s.forms.Resource().ParseParams(v)
	if err != nil {
		return nil, err
	}
	result, err := s.forms.List(ctx, p)
	if err != nil {
		return nil, err
	}

	resp := &dtos.ListResponse[dtos.FormReturnResponse]{
		Items:      s.ToResponses(result.Items),
		Pagination: result.Pagination(),
		Filters:    map[string][]string{"province": result.Distinct},
	}
	s.cache.Set(ctx, slot, resp)
	return resp, nil
}

// Rows returns the rows an export of the given list parameters contains.
func (s *FormReturnService) Rows(ctx context.Context, v url.Values, all bool) ([]gormModels.FormReturn, error) {
	p, err := s.forms.Resource().ParseParams(v)
	if err != nil {
		return nil, err
	}
	p.Unpaged = all
	result, err := s.forms.List(ctx, p)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (s *FormReturnService) Get(ctx context.Context, id uint) (*gormModels.FormReturn, error) {
	f, err := s.forms.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, constants.MsgFormReturnMissing)
	}
	return f, nil
}

// Create validates every field and both images before anything is stored.
// If the row cannot be written the new files are removed again.
func (s *FormReturnService) Create(ctx context.Context, req dtos.FormReturnRequest, images FormImages) (*gormModels.FormReturn, error) {
	f, err := formReturnFromRequest(req)
	if err != nil {
		return nil, err
	}
	if images.Image1 == nil || images.Image2 == nil {
		return nil, badRequest(constants.ErrCodeValidation, constants.MsgImagesRequired)
	}

	prepared, err := s.prepare(images)
	if err != nil {
		return nil, err
	}
	keys, err := s.put(ctx, prepared)
	if err != nil {
		return nil, err
	}
	f.Image1, f.Image2 = keys[0], keys[1]

	if err := s.forms.Create(ctx, f); err != nil {
		s.discard(ctx, keys[:]...)
		return nil, err
	}

	s.mutated(ctx)
	if s.metrics != nil {
		s.metrics.RecordsCreatedTotal.WithLabelValues(constants.ResourceFormReturns).Inc()
	}
	logging.Info("Form return created", "form_return_id", f.ID)
	return f, nil
}

// Update replaces the fields and any supplied image. New files are written
// first, the row is committed, then replaced files are deleted.
func (s *FormReturnService) Update(ctx context.Context, id uint, req dtos.FormReturnRequest, images FormImages) (*gormModels.FormReturn, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	f, err := formReturnFromRequest(req)
	if err != nil {
		return nil, err
	}
	f.ID = existing.ID
	f.CreatedAt = existing.CreatedAt
	f.Image1, f.Image2 = existing.Image1, existing.Image2

	prepared, err := s.prepare(images)
	if err != nil {
		return nil, err
	}
	keys, err := s.put(ctx, prepared)
	if err != nil {
		return nil, err
	}

	var replaced, written []string
	if keys[0] != "" {
		replaced = append(replaced, existing.Image1)
		written = append(written, keys[0])
		f.Image1 = keys[0]
	}
	if keys[1] != "" {
		replaced = append(replaced, existing.Image2)
		written = append(written, keys[1])
		f.Image2 = keys[1]
	}

	if err := s.forms.Save(ctx, f); err != nil {
		s.discard(ctx, written...)
		return nil, notFoundOr(err, constants.MsgFormReturnMissing)
	}

	s.discard(ctx, replaced...)
	s.mutated(ctx)
	logging.Info("Form return updated", "form_return_id", f.ID, "images_replaced", len(written))
	return s.Get(ctx, id)
}

// Delete removes the row first; images that cannot be deleted afterwards are
// left for the orphan sweep.
func (s *FormReturnService) Delete(ctx context.Context, id uint) error {
	f, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.forms.Delete(ctx, id); err != nil {
		return notFoundOr(err, constants.MsgFormReturnMissing)
	}

	s.discard(ctx, f.ImageKeys()...)
	s.mutated(ctx)
	if s.metrics != nil {
		s.metrics.RecordsDeletedTotal.WithLabelValues(constants.ResourceFormReturns).Inc()
	}
	logging.Info("Form return deleted", "form_return_id", id)
	return nil
}

func (s *FormReturnService) ToResponse(f *gormModels.FormReturn) dtos.FormReturnResponse {
	store := s.uploader.Store()
	resp := dtos.FormReturnResponse{
		ID:               f.ID,
		OrganizationName: f.OrganizationName,
		OrganizationType: f.OrganizationType,
		FirstName:        f.FirstName,
		LastName:         f.LastName,
		AddressLine:      f.AddressLine,
		District:         f.District,
		Province:         f.Province,
		ZipCode:          f.ZipCode,
		PhoneNumber:      f.Phone,
		SignerCount:      f.SignerCount,
		Image1:           f.Image1,
		Image2:           f.Image2,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
	if f.Image1 != "" {
		resp.Image1URL = store.URL(f.Image1)
	}
	if f.Image2 != "" {
		resp.Image2URL = store.URL(f.Image2)
	}
	return resp
}

func (s *FormReturnService) ToResponses(rows []gormModels.FormReturn) []dtos.FormReturnResponse {
	out := make([]dtos.FormReturnResponse, len(rows))
	for i := range rows {
		out[i] = s.ToResponse(&rows[i])
	}
	return out
}

// prepare decodes every supplied image. Nothing is written.
func (s *FormReturnService) prepare(images FormImages) ([2]*storage.Prepared, error) {
	var out [2]*storage.Prepared
	for i, r := range []io.Reader{images.Image1, images.Image2} {
		if r == nil {
			continue
		}
		img, err := s.uploader.Prepare(r)
		if err != nil {
			if se, ok := AsServiceError(imageError(err)); ok {
				se.Message = "image" + strconv.Itoa(i+1) + ": " + se.Message
				return out, se
			}
			return out, err
		}
		out[i] = img
	}
	return out, nil
}

// put stores the prepared images. On failure nothing written stays behind.
func (s *FormReturnService) put(ctx context.Context, prepared [2]*storage.Prepared) ([2]string, error) {
	var keys [2]string
	for i, img := range prepared {
		if img == nil {
			continue
		}
		key, err := s.uploader.Put(ctx, constants.FolderFormReturns, img)
		if err != nil {
			s.discard(ctx, keys[:i]...)
			return [2]string{}, newError(http.StatusInternalServerError, constants.ErrCodeInternalError, constants.MsgInternalError, err)
		}
		keys[i] = key
		if s.metrics != nil {
			s.metrics.ImagesStoredTotal.Inc()
		}
	}
	return keys, nil
}

func (s *FormReturnService) discard(ctx context.Context, keys ...string) {
	if err := s.uploader.DeleteAll(ctx, keys...); err != nil {
		logging.Warn("Failed to delete form images, left for sweeper", "keys", keys, "error", err)
	}
}

func (s *FormReturnService) mutated(ctx context.Context) {
	s.cache.Invalidate(ctx, constants.ResourceFormReturns, constants.ResourceDashboard)
}

func formReturnFromRequest(req dtos.FormReturnRequest) (*gormModels.FormReturn, error) {
	if err := validation.Struct(req); err != nil {
		return nil, invalid(err)
	}
	f := &gormModels.FormReturn{
		OrganizationName: req.OrganizationName,
		OrganizationType: strings.TrimSpace(req.OrganizationType),
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		AddressLine:      strings.TrimSpace(req.AddressLine),
		District:         strings.TrimSpace(req.District),
		Province:         strings.TrimSpace(req.Province),
		ZipCode:          strings.TrimSpace(req.ZipCode),
		Phone:            req.PhoneNumber,
		SignerCount:      req.SignerCount,
	}
	if err := validation.FormReturn(f); err != nil {
		return nil, invalid(err)
	}
	return f, nil
}
