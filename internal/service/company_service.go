package service

import (
	"context"

	"github.com/Aidanden/SIMS-sub007/internal/dto"
	"github.com/Aidanden/SIMS-sub007/internal/ledger"
	"github.com/Aidanden/SIMS-sub007/internal/model"
	"github.com/Aidanden/SIMS-sub007/internal/repository"

	"github.com/google/uuid"
)

type CompanyService interface {
	Create(ctx context.Context, scope Scope, req dto.CreateCompanyRequest) (*dto.CompanyResponse, error)
	List(ctx context.Context) ([]dto.CompanyResponse, error)
}

type companyService struct {
	repo repository.CompanyRepository
}

func NewCompanyService(repo repository.CompanyRepository) CompanyService {
	return &companyService{repo: repo}
}

func (s *companyService) Create(ctx context.Context, scope Scope, req dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if !scope.SystemScope {
		return nil, ledger.ErrScopeForbidden
	}
	company := model.Company{Name: req.Name, Code: req.Code, Active: true}
	if req.ParentID != nil {
		parentID, err := uuid.Parse(*req.ParentID)
		if err != nil {
			return nil, ledger.Validation("invalid parent_id")
		}
		parent, err := s.repo.FindByID(ctx, parentID)
		if err != nil {
			return nil, notFoundOr(err, ledger.ErrCompanyNotFound)
		}
		// Strict two-level hierarchy: a branch's parent must be parentless.
		if parent.IsBranch() {
			return nil, ledger.ErrDeepHierarchy
		}
		company.ParentID = &parent.ID
	}
	if err := s.repo.Create(ctx, &company); err != nil {
		return nil, err
	}
	return companyToResponse(&company), nil
}

func (s *companyService) List(ctx context.Context) ([]dto.CompanyResponse, error) {
	companies, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(companies))
	for i := range companies {
		items = append(items, *companyToResponse(&companies[i]))
	}
	return items, nil
}

func companyToResponse(c *model.Company) *dto.CompanyResponse {
	resp := &dto.CompanyResponse{ID: c.ID.String(), Name: c.Name, Code: c.Code}
	if c.ParentID != nil {
		id := c.ParentID.String()
		resp.ParentID = &id
	}
	return resp
}
