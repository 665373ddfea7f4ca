package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/fiscal-coupon-api/internal/model"
	"github.com/fairyhunter13/fiscal-coupon-api/pkg/database"
)

// mockClientRepository is a mock implementation of ClientRepositoryInterface.
type mockClientRepository struct {
	listFn           func(ctx context.Context) ([]model.Client, error)
	searchByNameFn   func(ctx context.Context, fragment string) ([]model.Client, error)
	getByCPFFn       func(ctx context.Context, cpf string) (*model.Client, error)
	getForShareFn    func(ctx context.Context, tx database.TxQuerier, cpf string) (*model.Client, error)
	insertFn         func(ctx context.Context, client *model.Client) error
	updateFn         func(ctx context.Context, cpf string, patch model.ClientPatch) (*model.Client, error)
	deleteFn         func(ctx context.Context, cpf string) error
	deleteTxFn       func(ctx context.Context, tx database.TxQuerier, cpf string) error
	lockCPFsByNameFn func(ctx context.Context, tx database.TxQuerier, name string) ([]string, error)
}

func (m *mockClientRepository) List(ctx context.Context) ([]model.Client, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Client{}, nil
}

func (m *mockClientRepository) SearchByName(ctx context.Context, fragment string) ([]model.Client, error) {
	if m.searchByNameFn != nil {
		return m.searchByNameFn(ctx, fragment)
	}
	return []model.Client{}, nil
}

func (m *mockClientRepository) GetByCPF(ctx context.Context, cpf string) (*model.Client, error) {
	if m.getByCPFFn != nil {
		return m.getByCPFFn(ctx, cpf)
	}
	return nil, nil
}

func (m *mockClientRepository) GetByCPFForShare(ctx context.Context, tx database.TxQuerier, cpf string) (*model.Client, error) {
	if m.getForShareFn != nil {
		return m.getForShareFn(ctx, tx, cpf)
	}
	return nil, nil
}

func (m *mockClientRepository) Insert(ctx context.Context, client *model.Client) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, client)
	}
	return nil
}

func (m *mockClientRepository) Update(ctx context.Context, cpf string, patch model.ClientPatch) (*model.Client, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, cpf, patch)
	}
	return nil, nil
}

func (m *mockClientRepository) Delete(ctx context.Context, cpf string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, cpf)
	}
	return nil
}

func (m *mockClientRepository) DeleteTx(ctx context.Context, tx database.TxQuerier, cpf string) error {
	if m.deleteTxFn != nil {
		return m.deleteTxFn(ctx, tx, cpf)
	}
	return nil
}

func (m *mockClientRepository) LockCPFsByName(ctx context.Context, tx database.TxQuerier, name string) ([]string, error) {
	if m.lockCPFsByNameFn != nil {
		return m.lockCPFsByNameFn(ctx, tx, name)
	}
	return nil, nil
}

func TestClientService_List(t *testing.T) {
	repo := &mockClientRepository{
		listFn: func(ctx context.Context) ([]model.Client, error) {
			return []model.Client{{CPF: "52998224725", Name: "Ana"}}, nil
		},
	}
	svc := NewClientServiceWithTxBeginner(nil, repo)

	clients, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, clients, 1)
}

func TestClientService_List_Empty(t *testing.T) {
	svc := NewClientServiceWithTxBeginner(nil, &mockClientRepository{})

	_, err := svc.List(context.Background())

	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestClientService_SearchByName_NoMatch(t *testing.T) {
	var gotFragment string
	repo := &mockClientRepository{
		searchByNameFn: func(ctx context.Context, fragment string) ([]model.Client, error) {
			gotFragment = fragment
			return nil, nil
		},
	}
	svc := NewClientServiceWithTxBeginner(nil, repo)

	_, err := svc.SearchByName(context.Background(), "Silva")

	assert.ErrorIs(t, err, ErrClientNotFound)
	assert.Equal(t, "Silva", gotFragment)
}

func TestClientService_GetByCPF(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := &mockClientRepository{
			getByCPFFn: func(ctx context.Context, cpf string) (*model.Client, error) {
				return &model.Client{CPF: cpf, Name: "Ana"}, nil
			},
		}
		svc := NewClientServiceWithTxBeginner(nil, repo)

		client, err := svc.GetByCPF(context.Background(), "52998224725")

		require.NoError(t, err)
		assert.Equal(t, "Ana", client.Name)
	})

	t.Run("not found", func(t *testing.T) {
		svc := NewClientServiceWithTxBeginner(nil, &mockClientRepository{})

		_, err := svc.GetByCPF(context.Background(), "52998224725")

		assert.ErrorIs(t, err, ErrClientNotFound)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := &mockClientRepository{
			getByCPFFn: func(ctx context.Context, cpf string) (*model.Client, error) {
				return nil, errors.New("connection reset")
			},
		}
		svc := NewClientServiceWithTxBeginner(nil, repo)

		_, err := svc.GetByCPF(context.Background(), "52998224725")

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrClientNotFound)
	})
}

func TestClientService_Create(t *testing.T) {
	var captured *model.Client
	repo := &mockClientRepository{
		insertFn: func(ctx context.Context, client *model.Client) error {
			captured = client
			return nil
		},
	}
	svc := NewClientServiceWithTxBeginner(nil, repo)

	client, err := svc.Create(context.Background(), &model.CreateClientRequest{Name: "Ana", CPF: "52998224725"})

	require.NoError(t, err)
	assert.Same(t, captured, client)
	assert.Equal(t, "52998224725", client.CPF)
	assert.Equal(t, "Ana", client.Name)
}

func TestClientService_Create_Duplicate(t *testing.T) {
	repo := &mockClientRepository{
		insertFn: func(ctx context.Context, client *model.Client) error {
			return ErrClientExists
		},
	}
	svc := NewClientServiceWithTxBeginner(nil, repo)

	_, err := svc.Create(context.Background(), &model.CreateClientRequest{Name: "Ana", CPF: "52998224725"})

	assert.ErrorIs(t, err, ErrClientExists)
}

func TestClientService_Create_NilRequest(t *testing.T) {
	svc := NewClientServiceWithTxBeginner(nil, &mockClientRepository{})

	_, err := svc.Create(context.Background(), nil)

	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestClientService_Update(t *testing.T) {
	var gotPatch model.ClientPatch
	repo := &mockClientRepository{
		updateFn: func(ctx context.Context, cpf string, patch model.ClientPatch) (*model.Client, error) {
			gotPatch = patch
			return &model.Client{CPF: cpf, Name: *patch.Name}, nil
		},
	}
	svc := NewClientServiceWithTxBeginner(nil, repo)

	client, err := svc.Update(context.Background(), "52998224725", &model.UpdateClientRequest{Name: strPtr("Ana Maria")})

	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", client.Name)
	assert.Nil(t, gotPatch.CPF)
}

func TestClientService_Update_NoFields(t *testing.T) {
	called := false
	repo := &mockClientRepository{
		updateFn: func(ctx context.Context, cpf string, patch model.ClientPatch) (*model.Client, error) {
			called = true
			return nil, nil
		},
	}
	svc := NewClientServiceWithTxBeginner(nil, repo)

	_, err := svc.Update(context.Background(), "52998224725", &model.UpdateClientRequest{})

	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
	assert.False(t, called, "repository must not be called for an empty patch")
}

func TestClientService_DeleteByCPF_NotFound(t *testing.T) {
	repo := &mockClientRepository{
		deleteFn: func(ctx context.Context, cpf string) error {
			return ErrClientNotFound
		},
	}
	svc := NewClientServiceWithTxBeginner(nil, repo)

	err := svc.DeleteByCPF(context.Background(), "52998224725")

	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestClientService_DeleteByName(t *testing.T) {
	tests := []struct {
		name        string
		matches     []string
		wantErr     error
		wantDeleted string
	}{
		{name: "single match", matches: []string{"52998224725"}, wantDeleted: "52998224725"},
		{name: "no match", matches: nil, wantErr: ErrClientNotFound},
		{name: "ambiguous", matches: []string{"52998224725", "11144477735"}, wantErr: ErrAmbiguousName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &mockTx{}
			var deleted []string
			repo := &mockClientRepository{
				lockCPFsByNameFn: func(ctx context.Context, q database.TxQuerier, name string) ([]string, error) {
					assert.Same(t, tx, q, "lock must run inside the transaction")
					assert.Equal(t, "Ana", name)
					return tt.matches, nil
				},
				deleteTxFn: func(ctx context.Context, q database.TxQuerier, cpf string) error {
					assert.Same(t, tx, q)
					deleted = append(deleted, cpf)
					return nil
				},
			}
			svc := NewClientServiceWithTxBeginner(beginnerFor(tx), repo)

			cpf, err := svc.DeleteByName(context.Background(), "Ana")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, deleted, "nothing may be deleted on error")
				assert.False(t, tx.committed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDeleted, cpf)
			assert.Equal(t, []string{tt.wantDeleted}, deleted)
			assert.True(t, tx.committed)
		})
	}
}

func TestClientService_DeleteByName_BeginError(t *testing.T) {
	pool := &mockTxBeginner{
		beginFn: func(ctx context.Context) (pgx.Tx, error) {
			return nil, errors.New("pool exhausted")
		},
	}
	svc := NewClientServiceWithTxBeginner(pool, &mockClientRepository{})

	_, err := svc.DeleteByName(context.Background(), "Ana")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}

func TestClientService_DeleteByName_RollbackOnDeleteError(t *testing.T) {
	rolledBack := false
	tx := &mockTx{
		rollbackFn: func(ctx context.Context) error {
			rolledBack = true
			return nil
		},
	}
	repo := &mockClientRepository{
		lockCPFsByNameFn: func(ctx context.Context, q database.TxQuerier, name string) ([]string, error) {
			return []string{"52998224725"}, nil
		},
		deleteTxFn: func(ctx context.Context, q database.TxQuerier, cpf string) error {
			return errors.New("statement timeout")
		},
	}
	svc := NewClientServiceWithTxBeginner(beginnerFor(tx), repo)

	_, err := svc.DeleteByName(context.Background(), "Ana")

	require.Error(t, err)
	assert.True(t, rolledBack)
}
