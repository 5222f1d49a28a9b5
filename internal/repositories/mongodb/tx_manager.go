package mongodb

import (
	"context"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

var _ repositories.TxManager = (*TxManager)(nil)

// TxManager runs settlement batches inside MongoDB multi-document transactions
type TxManager struct {
	client *mongo.Client
}

// NewTxManager creates a new TxManager
func NewTxManager(client *mongo.Client) *TxManager {
	return &TxManager{client: client}
}

// WithTransaction commits every write fn makes through its session context, or none of them.
// The driver retries fn on transient transaction errors such as write conflicts.
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	txnOptions := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.New(writeconcern.WMajority()))

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	}, txnOptions)
	return err
}
