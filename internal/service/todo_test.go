package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-notes-api/internal/model"
	"github.com/BuzzLyutic/todo-notes-api/internal/repo"
	"github.com/BuzzLyutic/todo-notes-api/internal/todolist"
	"github.com/BuzzLyutic/todo-notes-api/internal/worker"
)

// MockTodoRepository - мок репозитория
type MockTodoRepository struct {
	mock.Mock
}

func (m *MockTodoRepository) Create(ctx context.Context, t model.Todo) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTodoRepository) FetchByOwner(ctx context.Context, ownerID string) ([]model.Todo, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.Todo), args.Error(1)
}

func (m *MockTodoRepository) UpdateField(ctx context.Context, ownerID, id string, field model.TodoField, value any) error {
	args := m.Called(ctx, ownerID, id, field, value)
	return args.Error(0)
}

func (m *MockTodoRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *MockTodoRepository) SaveIdempotencyKey(ctx context.Context, ownerID, key, resourceID string) error {
	args := m.Called(ctx, ownerID, key, resourceID)
	return args.Error(0)
}

func (m *MockTodoRepository) GetIdempotencyKey(ctx context.Context, ownerID, key string) (string, error) {
	args := m.Called(ctx, ownerID, key)
	return args.String(0), args.Error(1)
}

func newTodoService(t *testing.T, r repo.TodoRepository) *TodoService {
	t.Helper()
	logger := zap.NewNop()
	pool := worker.NewPool(logger, 2)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)

	svc := NewTodoService(r, todolist.NewRegistry(r, pool, logger), logger)
	svc.newID = func() string { return "generated-id" }
	return svc
}

func TestTodoService_Create(t *testing.T) {
	tests := []struct {
		name      string
		todo      model.Todo
		idempKey  string
		setupMock func(*MockTodoRepository)
		want      model.Todo
		wantErr   error
	}{
		{
			name: "defaults applied",
			todo: model.Todo{Title: "Write report", IsDone: true},
			setupMock: func(m *MockTodoRepository) {
				m.On("Create", mock.Anything, model.Todo{
					ID: "generated-id", OwnerID: "u1", Title: "Write report",
					Category: model.CategoryPersonal, DueBucket: model.DueToday, Priority: model.PriorityLow,
				}).Return(nil)
			},
			want: model.Todo{
				ID: "generated-id", OwnerID: "u1", Title: "Write report",
				Category: model.CategoryPersonal, DueBucket: model.DueToday, Priority: model.PriorityLow,
			},
		},
		{
			name:      "validation error - blank title",
			todo:      model.Todo{Title: "   "},
			setupMock: func(m *MockTodoRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:      "validation error - unknown priority",
			todo:      model.Todo{Title: "Task", Priority: "Urgent"},
			setupMock: func(m *MockTodoRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:      "validation error - unknown category",
			todo:      model.Todo{Title: "Task", Category: "Family"},
			setupMock: func(m *MockTodoRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:     "idempotency - key exists",
			todo:     model.Todo{Title: "Task"},
			idempKey: "key-123",
			setupMock: func(m *MockTodoRepository) {
				m.On("GetIdempotencyKey", mock.Anything, "u1", "key-123").Return("t42", nil)
				m.On("FetchByOwner", mock.Anything, "u1").Return([]model.Todo{
					{ID: "t1", OwnerID: "u1", Title: "Other"},
					{ID: "t42", OwnerID: "u1", Title: "Task"},
				}, nil)
			},
			want: model.Todo{ID: "t42", OwnerID: "u1", Title: "Task"},
		},
		{
			name:     "idempotency - new key",
			todo:     model.Todo{Title: "Task", Category: model.CategoryTeam},
			idempKey: "key-456",
			setupMock: func(m *MockTodoRepository) {
				m.On("GetIdempotencyKey", mock.Anything, "u1", "key-456").Return("", repo.ErrorNotFound)
				m.On("Create", mock.Anything, mock.Anything).Return(nil)
				m.On("SaveIdempotencyKey", mock.Anything, "u1", "key-456", "generated-id").Return(nil)
			},
			want: model.Todo{
				ID: "generated-id", OwnerID: "u1", Title: "Task",
				Category: model.CategoryTeam, DueBucket: model.DueToday, Priority: model.PriorityLow,
			},
		},
		{
			name: "store conflict",
			todo: model.Todo{Title: "Task"},
			setupMock: func(m *MockTodoRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(repo.ErrorConflict)
			},
			wantErr: repo.ErrorConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTodoRepository)
			tt.setupMock(mockRepo)

			svc := newTodoService(t, mockRepo)
			result, err := svc.Create(context.Background(), "u1", tt.todo, tt.idempKey)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, result)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTodoService_List(t *testing.T) {
	todos := []model.Todo{
		{ID: "1", OwnerID: "u1", Title: "Report", Category: model.CategoryTeam, DueBucket: model.DueToday, Priority: model.PriorityHigh},
		{ID: "2", OwnerID: "u1", Title: "Gym", Category: model.CategoryPersonal, DueBucket: model.DueToday, Priority: model.PriorityLow, IsDone: true},
	}

	t.Run("filters the reloaded todos", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("FetchByOwner", mock.Anything, "u1").Return(todos, nil)

		svc := newTodoService(t, mockRepo)
		team := model.CategoryTeam
		got, err := svc.List(context.Background(), "u1", todolist.Filter{Category: &team})

		require.NoError(t, err)
		assert.Equal(t, []model.Todo{todos[0]}, got.Incomplete)
		assert.Empty(t, got.Complete)
		mockRepo.AssertExpectations(t)
	})

	t.Run("reload failure serves last load", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("FetchByOwner", mock.Anything, "u1").Return(todos, nil).Once()
		mockRepo.On("FetchByOwner", mock.Anything, "u1").Return([]model.Todo(nil), errors.New("offline")).Once()

		svc := newTodoService(t, mockRepo)
		_, err := svc.List(context.Background(), "u1", todolist.Filter{})
		require.NoError(t, err)

		got, err := svc.List(context.Background(), "u1", todolist.Filter{})
		require.NoError(t, err)
		assert.Len(t, got.Incomplete, 1)
		assert.Len(t, got.Complete, 1)
	})

	t.Run("cancelled request", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("FetchByOwner", mock.Anything, "u1").Return(todos, nil).Maybe()

		svc := newTodoService(t, mockRepo)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := svc.List(ctx, "u1", todolist.Filter{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTodoService_SetStatus(t *testing.T) {
	todos := []model.Todo{
		{ID: "2", OwnerID: "u1", Title: "Gym", Category: model.CategoryPersonal, DueBucket: model.DueToday, Priority: model.PriorityLow, IsDone: true},
	}

	t.Run("toggle then stale reload keeps local flag", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("FetchByOwner", mock.Anything, "u1").Return(todos, nil)
		mockRepo.On("UpdateField", mock.Anything, "u1", "2", model.FieldIsDone, false).Return(nil)

		svc := newTodoService(t, mockRepo)
		ctx := context.Background()

		_, err := svc.List(ctx, "u1", todolist.Filter{})
		require.NoError(t, err)

		updated, err := svc.SetStatus(ctx, "u1", "2", false)
		require.NoError(t, err)
		assert.False(t, updated.IsDone)
		assert.Equal(t, "Gym", updated.Title)

		got, err := svc.List(ctx, "u1", todolist.Filter{})
		require.NoError(t, err)
		require.Len(t, got.Incomplete, 1)
		assert.Equal(t, "2", got.Incomplete[0].ID)
		assert.Empty(t, got.Complete)
	})

	t.Run("store failure", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("UpdateField", mock.Anything, "u1", "9", model.FieldIsDone, true).Return(repo.ErrorNotFound)

		svc := newTodoService(t, mockRepo)
		_, err := svc.SetStatus(context.Background(), "u1", "9", true)
		assert.ErrorIs(t, err, repo.ErrorNotFound)
	})

	t.Run("session not loaded yet", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		mockRepo.On("UpdateField", mock.Anything, "u1", "3", model.FieldIsDone, true).Return(nil)

		svc := newTodoService(t, mockRepo)
		updated, err := svc.SetStatus(context.Background(), "u1", "3", true)
		require.NoError(t, err)
		assert.Equal(t, model.Todo{ID: "3", OwnerID: "u1", IsDone: true}, updated)
	})
}

func TestTodoService_EndSession(t *testing.T) {
	mockRepo := new(MockTodoRepository)
	mockRepo.On("FetchByOwner", mock.Anything, "u1").Return([]model.Todo{}, nil)

	svc := newTodoService(t, mockRepo)
	_, err := svc.List(context.Background(), "u1", todolist.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.sessions.Len())

	svc.EndSession("u1")
	assert.Equal(t, 0, svc.sessions.Len())
}
