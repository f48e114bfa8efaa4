package store

import (
	"strings"
	"testing"

	apperrors "github.com/aethra/atlas/internal/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganisationCreateWithContactFields(t *testing.T) {
	s := newTestStores(t).Organisations

	org, err := s.Create(OrganisationCreateInput{
		Name:    "Company A",
		Code:    "COMP-A",
		Email:   "info@company-a.example",
		Website: "https://company-a.example",
	})
	require.NoError(t, err)

	assert.Equal(t, "company-a", org.Slug)
	assert.Equal(t, "COMP-A", org.Code)
	assert.True(t, org.IsActive)
}

func TestOrganisationSubsidiaryTree(t *testing.T) {
	s := newTestStores(t).Organisations

	company, err := s.Create(OrganisationCreateInput{Name: "Company A"})
	require.NoError(t, err)
	sub, err := s.Create(OrganisationCreateInput{Name: "Subsidiary 1", ParentID: &company.ID})
	require.NoError(t, err)

	assert.Equal(t, 1, sub.Depth)
	assert.Equal(t, "subsidiary-1", sub.Slug)
	assert.Equal(t, "company-a", company.Slug)

	gotCompany, err := s.Get(company.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sub.Path, gotCompany.Path+"."))
	require.NotNil(t, sub.Parent)
	assert.Equal(t, company.ID, sub.Parent.ID)

	ancestors, err := s.Ancestors(sub.ID)
	require.NoError(t, err)
	require.Len(t, ancestors, 1)
	assert.Equal(t, company.ID, ancestors[0].ID)
}

func TestOrganisationSearchCoversCodeAndEmail(t *testing.T) {
	s := newTestStores(t).Organisations

	_, err := s.Create(OrganisationCreateInput{Name: "Company A", Code: "COMP-A"})
	require.NoError(t, err)
	target, err := s.Create(OrganisationCreateInput{
		Name:  "Company B",
		Code:  "COMP-B",
		Email: "billing@acme.example",
	})
	require.NoError(t, err)

	byCode, err := s.List(ListParams{Search: "comp-b"})
	require.NoError(t, err)
	require.Len(t, byCode.Data, 1)
	assert.Equal(t, target.ID, byCode.Data[0].ID)

	byEmail, err := s.List(ListParams{Search: "acme"})
	require.NoError(t, err)
	require.Len(t, byEmail.Data, 1)
	assert.Equal(t, target.ID, byEmail.Data[0].ID)
}

func TestOrganisationCycleRejected(t *testing.T) {
	s := newTestStores(t).Organisations

	company, err := s.Create(OrganisationCreateInput{Name: "Company A"})
	require.NoError(t, err)
	sub, err := s.Create(OrganisationCreateInput{Name: "Subsidiary 1", ParentID: &company.ID})
	require.NoError(t, err)

	_, err = s.Update(company.ID, OrganisationUpdateInput{ParentID: &sub.ID})
	require.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.(*apperrors.ValidationError).Fields, "parent_id")
}

func TestOrganisationDeleteCascadesAndCleansMembership(t *testing.T) {
	stores := newTestStores(t)
	s := stores.Organisations

	company, err := s.Create(OrganisationCreateInput{Name: "Company A"})
	require.NoError(t, err)
	sub, err := s.Create(OrganisationCreateInput{Name: "Subsidiary 1", ParentID: &company.ID})
	require.NoError(t, err)

	app, err := stores.Applications.Create(ApplicationCreateInput{
		Name:            "Portal",
		OrganisationIDs: []uuid.UUID{company.ID, sub.ID},
	})
	require.NoError(t, err)

	require.NoError(t, s.Delete(company.ID))

	_, err = s.Get(sub.ID)
	assert.True(t, apperrors.IsNotFound(err))

	got, err := stores.Applications.Get(app.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Organisations)
}

func TestOrganisationUpdatePartial(t *testing.T) {
	s := newTestStores(t).Organisations

	org, err := s.Create(OrganisationCreateInput{Name: "Company A", Phone: "123"})
	require.NoError(t, err)

	email := "new@company-a.example"
	inactive := false
	updated, err := s.Update(org.ID, OrganisationUpdateInput{Email: &email, IsActive: &inactive})
	require.NoError(t, err)

	assert.Equal(t, email, updated.Email)
	assert.False(t, updated.IsActive)
	// Untouched fields survive.
	assert.Equal(t, "Company A", updated.Name)
	assert.Equal(t, "123", updated.Phone)
}
