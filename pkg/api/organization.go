package api

import (
	"context"
	"net/url"

	"github.com/arcentra/console/pkg/model"
)

// OrganizationService は組織の操作を扱う。
type OrganizationService struct {
	r Requester
}

func organizationPath(id string) string {
	return "/organizations/" + url.PathEscape(id)
}

// ListOrganizations はユーザーが所属する組織を取得する。
func (s *OrganizationService) ListOrganizations(ctx context.Context) (*model.OrganizationListResponse, error) {
	var resp model.OrganizationListResponse
	if err := s.r.GetJSON(ctx, "/organizations", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOrganization は組織の詳細を取得する。
func (s *OrganizationService) GetOrganization(ctx context.Context, id string) (*model.Organization, error) {
	var org model.Organization
	if err := s.r.GetJSON(ctx, organizationPath(id), &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// CreateOrganization は組織を作成する。
func (s *OrganizationService) CreateOrganization(ctx context.Context, req model.CreateOrganizationRequest) (*model.Organization, error) {
	var org model.Organization
	if err := s.r.PostJSON(ctx, "/organizations", req, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// UpdateOrganization は組織を更新する。
func (s *OrganizationService) UpdateOrganization(ctx context.Context, id string, req model.UpdateOrganizationRequest) (*model.Organization, error) {
	var org model.Organization
	if err := s.r.PutJSON(ctx, organizationPath(id), req, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// DeleteOrganization は組織を削除する。
func (s *OrganizationService) DeleteOrganization(ctx context.Context, id string) error {
	return s.r.DeleteJSON(ctx, organizationPath(id), nil)
}
