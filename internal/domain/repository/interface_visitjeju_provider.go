package repository

import (
	"context"

	"Dormung-App/internal/domain/model"
)

// VisitJejuProvider ビジットジェジュAPIへのアクセスを抽象化する
type VisitJejuProvider interface {
	// GetContentByID コンテンツIDで観光地情報を取得する
	// レスポンスが空の場合は model.ErrContentNotFound を返す
	GetContentByID(ctx context.Context, contentsID string) (*model.TouristInfo, error)

	// SearchContents キーワードで観光地情報を検索する
	SearchContents(ctx context.Context, keyword string, page, size int) ([]model.TouristInfo, error)

	// TestConnection APIへの疎通を確認する
	TestConnection(ctx context.Context) bool
}
