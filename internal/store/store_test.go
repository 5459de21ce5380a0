package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/MediSynth-io/updateservice/internal/config"
	"github.com/MediSynth-io/updateservice/internal/database"
	"github.com/MediSynth-io/updateservice/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type StoreTestSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := database.Open(s.ctx, config.Database{
		Type:       "sqlite",
		Path:       filepath.Join(s.T().TempDir(), "store.db"),
		MaxRetries: 1,
	}, zap.NewNop().Sugar())
	require.NoError(s.T(), err)
	s.store = New(db)
}

func (s *StoreTestSuite) TearDownTest() {
	s.store.DB().Close()
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func strPtr(v string) *string { return &v }

func (s *StoreTestSuite) mustTeam(name string) *models.Team {
	team, err := s.store.CreateTeam(s.ctx, name, strPtr("desc"))
	require.NoError(s.T(), err)
	return team
}

func (s *StoreTestSuite) mustApp(teamID int64, name string) *models.Application {
	app, err := s.store.CreateApplication(s.ctx, teamID, name, nil)
	require.NoError(s.T(), err)
	return app
}

func (s *StoreTestSuite) TestTeams() {
	team := s.mustTeam("core")
	assert.NotZero(s.T(), team.ID)

	_, err := s.store.CreateTeam(s.ctx, "core", nil)
	assert.ErrorIs(s.T(), err, ErrTeamExists)

	s.mustTeam("edge")
	teams, err := s.store.ListTeams(s.ctx, 1, 1)
	require.NoError(s.T(), err)
	require.Len(s.T(), teams, 1)
	assert.Equal(s.T(), "edge", teams[0].Name)

	updated, err := s.store.UpdateTeam(s.ctx, team.ID, strPtr("platform"), nil)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "platform", updated.Name)
	assert.Equal(s.T(), "desc", *updated.Description)

	_, err = s.store.UpdateTeam(s.ctx, team.ID, strPtr("edge"), nil)
	assert.ErrorIs(s.T(), err, ErrTeamExists)

	_, err = s.store.UpdateTeam(s.ctx, 999, strPtr("x"), nil)
	assert.ErrorIs(s.T(), err, ErrTeamNotFound)
}

func (s *StoreTestSuite) TestUsers() {
	user, err := s.store.CreateUser(s.ctx, "ada@example.com", "Ada Lovelace")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), user.LastLogin)

	_, err = s.store.CreateUser(s.ctx, "ada@example.com", "Other")
	assert.ErrorIs(s.T(), err, ErrEmailTaken)

	_, err = s.store.CreateUser(s.ctx, "alan@example.com", "Alan Turing")
	require.NoError(s.T(), err)

	found, err := s.store.ListUsers(s.ctx, 20, 0, "LOVE")
	require.NoError(s.T(), err)
	require.Len(s.T(), found, 1)
	assert.Equal(s.T(), user.ID, found[0].ID)

	_, err = s.store.ListUsers(s.ctx, 20, 0, "grace")
	var noMatch *NoMatchError
	require.True(s.T(), errors.As(err, &noMatch))
	assert.Equal(s.T(), "grace", noMatch.Search)

	all, err := s.store.ListUsers(s.ctx, 20, 0, "")
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 2)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(s.T(), s.store.TouchLastLogin(s.ctx, user.ID, at))
	reloaded, err := s.store.GetUser(s.ctx, user.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), reloaded.LastLogin)
	assert.True(s.T(), at.Equal(*reloaded.LastLogin))

	_, err = s.store.GetUser(s.ctx, 999)
	assert.ErrorIs(s.T(), err, ErrUserNotFound)
}

func (s *StoreTestSuite) TestTokens() {
	user, err := s.store.CreateUser(s.ctx, "tok@example.com", "Token Owner")
	require.NoError(s.T(), err)

	tok := &models.Token{UserID: user.ID, Token: "signed", JTI: "jti-1"}
	require.NoError(s.T(), s.store.InsertToken(s.ctx, tok))
	assert.NotZero(s.T(), tok.ID)

	active, err := s.store.ActiveToken(s.ctx, user.ID, "jti-1")
	require.NoError(s.T(), err)
	assert.True(s.T(), active)

	found, err := s.store.FindUserToken(s.ctx, user.ID, "signed")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), tok.ID, found.ID)
	assert.False(s.T(), found.Deleted)

	require.NoError(s.T(), s.store.RevokeToken(s.ctx, user.ID, "signed"))

	active, err = s.store.ActiveToken(s.ctx, user.ID, "jti-1")
	require.NoError(s.T(), err)
	assert.False(s.T(), active)

	found, err = s.store.FindUserToken(s.ctx, user.ID, "signed")
	require.NoError(s.T(), err)
	assert.True(s.T(), found.Deleted, "revocation keeps the row")

	_, err = s.store.FindUserToken(s.ctx, user.ID, "other")
	assert.ErrorIs(s.T(), err, ErrTokenNotFound)
	assert.ErrorIs(s.T(), s.store.RevokeToken(s.ctx, user.ID, "other"), ErrTokenNotFound)
}

func (s *StoreTestSuite) TestApplications() {
	team := s.mustTeam("apps")
	other := s.mustTeam("others")

	_, err := s.store.CreateApplication(s.ctx, 999, "ghost", nil)
	assert.ErrorIs(s.T(), err, ErrTeamNotFound)

	app := s.mustApp(team.ID, "foo")
	s.mustApp(team.ID, "bar")

	_, err = s.store.CreateApplication(s.ctx, other.ID, "foo", nil)
	assert.ErrorIs(s.T(), err, ErrApplicationExists)

	apps, err := s.store.ListApplications(s.ctx, team.ID, 20, 0, "FO")
	require.NoError(s.T(), err)
	require.Len(s.T(), apps, 1)
	assert.Equal(s.T(), app.ID, apps[0].ID)

	_, err = s.store.ListApplications(s.ctx, team.ID, 20, 0, "zzz")
	var noMatch *NoMatchError
	assert.True(s.T(), errors.As(err, &noMatch))

	_, err = s.store.ListApplications(s.ctx, 999, 20, 0, "")
	var teamErr *TeamNotFoundError
	require.True(s.T(), errors.As(err, &teamErr))
	assert.Equal(s.T(), int64(999), teamErr.TeamID)
	assert.ErrorIs(s.T(), err, ErrTeamNotFound)

	patched, err := s.store.PatchApplication(s.ctx, team.ID, app.ID, nil, strPtr("new description"))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "foo", patched.Name)
	assert.Equal(s.T(), "new description", *patched.Description)

	_, err = s.store.PatchApplication(s.ctx, team.ID, app.ID, strPtr("bar"), nil)
	assert.ErrorIs(s.T(), err, ErrApplicationExists)

	_, err = s.store.PatchApplication(s.ctx, other.ID, app.ID, strPtr("baz"), nil)
	assert.ErrorIs(s.T(), err, ErrApplicationNotFound)

	detail, err := s.store.GetApplication(s.ctx, team.ID, app.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), team.ID, detail.Team.ID)
	assert.Empty(s.T(), detail.Group)
}

func (s *StoreTestSuite) TestGroups() {
	team := s.mustTeam("groups")
	app := s.mustApp(team.ID, "grouped")

	group, err := s.store.CreateGroup(s.ctx, "beta")
	require.NoError(s.T(), err)
	_, err = s.store.CreateGroup(s.ctx, "beta")
	assert.ErrorIs(s.T(), err, ErrGroupExists)

	link, err := s.store.AssignGroup(s.ctx, app.ID, group.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), app.ID, link.ApplicationID)
	assert.Equal(s.T(), group.ID, link.GroupID)

	_, err = s.store.AssignGroup(s.ctx, app.ID, group.ID)
	var already *AlreadyAssignedError
	require.True(s.T(), errors.As(err, &already))
	assert.Equal(s.T(), app.ID, already.ApplicationID)
	assert.Equal(s.T(), group.ID, already.GroupID)

	detail, err := s.store.GetApplication(s.ctx, team.ID, app.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []int64{group.ID}, detail.Group)

	assert.ErrorIs(s.T(), s.store.DeleteGroup(s.ctx, group.ID), ErrGroupInUse)

	require.NoError(s.T(), s.store.UnassignGroup(s.ctx, app.ID, group.ID))
	err = s.store.UnassignGroup(s.ctx, app.ID, group.ID)
	var notAssigned *NotAssignedError
	assert.True(s.T(), errors.As(err, &notAssigned))

	_, err = s.store.AssignGroup(s.ctx, 999, group.ID)
	assert.ErrorIs(s.T(), err, ErrApplicationNotFound)
	_, err = s.store.AssignGroup(s.ctx, app.ID, 999)
	assert.ErrorIs(s.T(), err, ErrGroupNotFound)

	require.NoError(s.T(), s.store.DeleteGroup(s.ctx, group.ID))
	assert.ErrorIs(s.T(), s.store.DeleteGroup(s.ctx, group.ID), ErrGroupNotFound)
}

func (s *StoreTestSuite) TestPackagesAndBackups() {
	team := s.mustTeam("pkgs")
	app := s.mustApp(team.ID, "packaged")

	p := &models.Package{ApplicationID: app.ID, Version: "1.0.0"}
	require.NoError(s.T(), s.store.InsertPackage(s.ctx, p))

	got, err := s.store.GetPackage(s.ctx, app.ID, p.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), got.HasFile())
	assert.Nil(s.T(), got.Hash)

	withFiles, err := s.store.PackagesWithFiles(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), withFiles)

	updated, err := s.store.SetPackageFile(s.ctx, app.ID, p.ID, "a.txt", "/v1/applications/1/packages/1/file", "abc123", 3)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "a.txt", *updated.File)
	assert.Equal(s.T(), int64(3), *updated.Size)

	withFiles, err = s.store.PackagesWithFiles(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), withFiles, 1)

	b := &models.Backup{PackageID: p.ID, BackupPath: "https://bucket/Package_1/a.txt"}
	require.NoError(s.T(), s.store.InsertBackup(s.ctx, b))
	done, err := s.store.BackedUpPackageIDs(s.ctx)
	require.NoError(s.T(), err)
	assert.True(s.T(), done[p.ID])

	list, err := s.store.ListPackages(s.ctx, app.ID, 20, 0)
	require.NoError(s.T(), err)
	assert.Len(s.T(), list, 1)

	list, err = s.store.ListPackages(s.ctx, app.ID, 20, 20)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), list)

	_, err = s.store.GetPackage(s.ctx, app.ID+1, p.ID)
	assert.ErrorIs(s.T(), err, ErrPackageNotFound)

	require.NoError(s.T(), s.store.DeletePackage(s.ctx, app.ID, p.ID))
	assert.ErrorIs(s.T(), s.store.DeletePackage(s.ctx, app.ID, p.ID), ErrPackageNotFound)
}
