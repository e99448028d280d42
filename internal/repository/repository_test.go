package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskmanager/internal/db"
	"taskmanager/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.OpenMemory(uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func testPolicy() db.RetryPolicy {
	return db.RetryPolicy{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, CommandTimeout: 5 * time.Second}
}

type fixture struct {
	users      UserRepository
	roles      RoleRepository
	tasks      TaskRepository
	categories CategoryRepository
}

func newFixture(t *testing.T) fixture {
	conn := newTestDB(t)
	p := testPolicy()
	return fixture{
		users:      NewUserRepository(conn, p),
		roles:      NewRoleRepository(conn, p),
		tasks:      NewTaskRepository(conn, p),
		categories: NewCategoryRepository(conn, p),
	}
}

func (f fixture) createUser(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Username: email, Email: email, PasswordHash: "x", FirstName: "F", LastName: "L"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	role := &model.Role{Name: model.RoleUser}
	require.NoError(t, f.roles.Create(ctx, role))

	u := &model.User{Username: "a@x.io", Email: "a@x.io", PasswordHash: "h", FirstName: "A", LastName: "B", Roles: []model.Role{*role}}
	require.NoError(t, f.users.Create(ctx, u))
	assert.NotEqual(t, uuid.Nil, u.ID)

	byEmail, err := f.users.FindByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, []string{model.RoleUser}, byEmail.RoleNames())

	byID, err := f.users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", byID.Email)

	exists, err := f.users.ExistsByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = f.users.ExistsByEmail(ctx, "nobody@x.io")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = f.users.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "dup@x.io")

	err := f.users.Create(context.Background(), &model.User{Email: "dup@x.io", Username: "dup", PasswordHash: "x", FirstName: "F", LastName: "L"})
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	users, err := f.users.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRoleRepository_FindByNames(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.roles.Create(ctx, &model.Role{Name: model.RoleAdmin}))
	require.NoError(t, f.roles.Create(ctx, &model.Role{Name: model.RoleUser}))

	none, err := f.roles.FindByNames(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	roles, err := f.roles.FindByNames(ctx, []string{model.RoleAdmin, "Ghost"})
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, model.RoleAdmin, roles[0].Name)
}

func TestRoleRepository_FindByName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.roles.FindByName(ctx, model.RoleAdmin)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, f.roles.Create(ctx, &model.Role{Name: model.RoleAdmin}))
	role, err := f.roles.FindByName(ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, role.Name)

	err = f.roles.Create(ctx, &model.Role{Name: model.RoleAdmin})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestTaskRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.createUser(t, "owner@x.io")
	assignee := f.createUser(t, "assignee@x.io")

	work := &model.Category{Name: "Work"}
	home := &model.Category{Name: "Home"}
	require.NoError(t, f.categories.Create(ctx, work))
	require.NoError(t, f.categories.Create(ctx, home))

	due := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	task := &model.Task{
		Title:        "Write report",
		DueDate:      &due,
		Priority:     model.PriorityHigh,
		Status:       model.StatusTodo,
		CreatedByID:  owner.ID,
		AssignedToID: &assignee.ID,
		Categories:   []model.Category{*work},
	}
	require.NoError(t, f.tasks.Create(ctx, task))

	got, err := f.tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Title)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, owner.Email, got.CreatedBy.Email)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, assignee.Email, got.AssignedTo.Email)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "Work", got.Categories[0].Name)

	got.Title = "Write final report"
	got.Status = model.StatusDone
	got.AssignedToID = nil
	got.Categories = []model.Category{*home}
	before := got.UpdatedAt
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, f.tasks.Update(ctx, got))

	updated, err := f.tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write final report", updated.Title)
	assert.Equal(t, model.StatusDone, updated.Status)
	assert.Nil(t, updated.AssignedToID)
	assert.Equal(t, owner.ID, updated.CreatedByID)
	assert.True(t, updated.UpdatedAt.After(before))
	require.Len(t, updated.Categories, 1)
	assert.Equal(t, "Home", updated.Categories[0].Name)

	updated.Categories = nil
	require.NoError(t, f.tasks.Update(ctx, updated))
	cleared, err := f.tasks.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, cleared.Categories)

	require.NoError(t, f.tasks.Delete(ctx, task.ID))
	_, err = f.tasks.FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, f.tasks.Delete(ctx, task.ID), gorm.ErrRecordNotFound)

	categories, err := f.categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2, "deleting a task keeps its categories")
}

func TestTaskRepository_ListByCreator(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.createUser(t, "alice@x.io")
	bob := f.createUser(t, "bob@x.io")

	for _, tk := range []*model.Task{
		{Title: "a1", Status: model.StatusTodo, Priority: model.PriorityLow, CreatedByID: alice.ID},
		{Title: "a2", Status: model.StatusTodo, Priority: model.PriorityLow, CreatedByID: alice.ID},
		{Title: "b1", Status: model.StatusTodo, Priority: model.PriorityLow, CreatedByID: bob.ID, AssignedToID: &alice.ID},
	} {
		require.NoError(t, f.tasks.Create(ctx, tk))
	}

	all, err := f.tasks.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := f.tasks.List(ctx, &alice.ID)
	require.NoError(t, err)
	titles := make([]string, 0, len(mine))
	for _, tk := range mine {
		titles = append(titles, tk.Title)
	}
	assert.ElementsMatch(t, []string{"a1", "a2"}, titles)
}

func TestCategoryRepository_FindByIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := &model.Category{Name: "Errands"}
	require.NoError(t, f.categories.Create(ctx, c))

	found, err := f.categories.FindByIDs(ctx, []uuid.UUID{c.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, c.ID, found[0].ID)

	none, err := f.categories.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
