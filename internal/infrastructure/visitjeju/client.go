package visitjeju

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"Dormung-App/internal/domain/model"
)

const (
	// searchListPath コンテンツ検索エンドポイント
	searchListPath = "/vsjApi/contents/searchList"

	// defaultTimeoutMS APIタイムアウトの既定値（ミリ秒）
	defaultTimeoutMS = 10000

	// maxTagLength alltagから代替タグを切り出すときの最大文字数
	maxTagLength = 100
)

// Config ビジットジェジュAPIクライアントの設定
type Config struct {
	BaseURL   string
	APIKey    string
	TimeoutMS int
}

// ConfigFromEnv 環境変数からクライアント設定を構築する
func ConfigFromEnv() Config {
	timeoutMS := defaultTimeoutMS
	if v := os.Getenv("JEJU_VISIT_API_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeoutMS = n
		}
	}
	return Config{
		BaseURL:   os.Getenv("JEJU_VISIT_API_URL"),
		APIKey:    os.Getenv("JEJU_VISIT_API_KEY"),
		TimeoutMS: timeoutMS,
	}
}

// Client ビジットジェジュAPIクライアント
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient 新しいクライアントを生成する
func NewClient(config Config) *Client {
	if config.TimeoutMS <= 0 {
		config.TimeoutMS = defaultTimeoutMS
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: time.Duration(config.TimeoutMS) * time.Millisecond},
	}
}

// GetContentByID コンテンツIDで観光地情報を取得する
// リトライは行わない。空レスポンスは model.ErrContentNotFound として返す
func (c *Client) GetContentByID(ctx context.Context, contentsID string) (*model.TouristInfo, error) {
	params := url.Values{}
	params.Set("page", "1")
	params.Set("cid", contentsID)

	apiResp, err := c.callSearchList(ctx, params)
	if err != nil {
		return nil, err
	}

	if apiResp.Result != "200" || len(apiResp.Items) == 0 {
		log.Printf("⚠️ ビジットジェジュAPI応答なし: %s (result: %s)", contentsID, apiResp.Result)
		return nil, model.ErrContentNotFound
	}

	info := convertToTouristInfo(&apiResp.Items[0])
	return info, nil
}

// SearchContents キーワードで観光地情報を検索する
func (c *Client) SearchContents(ctx context.Context, keyword string, page, size int) ([]model.TouristInfo, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(size))
	params.Set("q", keyword)

	apiResp, err := c.callSearchList(ctx, params)
	if err != nil {
		return nil, err
	}

	if apiResp.Result != "200" || len(apiResp.Items) == 0 {
		return nil, nil
	}

	results := make([]model.TouristInfo, 0, len(apiResp.Items))
	for i := range apiResp.Items {
		results = append(results, *convertToTouristInfo(&apiResp.Items[i]))
	}
	return results, nil
}

// TestConnection APIへの疎通を確認する。キャッシュへの副作用はない
func (c *Client) TestConnection(ctx context.Context) bool {
	params := url.Values{}
	params.Set("page", "1")
	params.Set("pageSize", "1")

	apiResp, err := c.callSearchList(ctx, params)
	if err != nil {
		log.Printf("❌ ビジットジェジュAPI疎通確認に失敗: %v", err)
		return false
	}
	return apiResp.Result != ""
}

// ValidateAPIKey APIキーが設定済みかつ有効かを確認する
func (c *Client) ValidateAPIKey(ctx context.Context) bool {
	if !c.hasAPIKey() {
		log.Printf("⚠️ ビジットジェジュAPIキーが設定されていません")
		return false
	}
	return c.TestConnection(ctx)
}

// Status API設定と疎通状態の診断情報
type Status struct {
	Connected    bool   `json:"connected"`
	BaseURL      string `json:"base_url"`
	HasAPIKey    bool   `json:"has_api_key"`
	TimeoutMS    int    `json:"timeout_ms"`
	Status       string `json:"status"`
	APIKeyMasked string `json:"api_key_masked"`
}

// GetStatus API設定と疎通状態を取得する
func (c *Client) GetStatus(ctx context.Context) *Status {
	hasKey := c.hasAPIKey()
	connected := hasKey && c.TestConnection(ctx)

	status := "DOWN"
	if connected {
		status = "UP"
	}

	masked := "NOT_SET"
	if hasKey {
		n := len(c.config.APIKey)
		if n > 4 {
			n = 4
		}
		masked = c.config.APIKey[:n] + "****"
	}

	return &Status{
		Connected:    connected,
		BaseURL:      c.config.BaseURL,
		HasAPIKey:    hasKey,
		TimeoutMS:    c.config.TimeoutMS,
		Status:       status,
		APIKeyMasked: masked,
	}
}

func (c *Client) hasAPIKey() bool {
	key := strings.TrimSpace(c.config.APIKey)
	return key != "" && key != "your_key_here"
}

// callSearchList searchListエンドポイントを呼び出して結果をパースする
func (c *Client) callSearchList(ctx context.Context, params url.Values) (*visitJejuAPIResponse, error) {
	params.Set("apiKey", c.config.APIKey)
	params.Set("locale", "kr")

	reqURL := fmt.Sprintf("%s%s?%s", strings.TrimRight(c.config.BaseURL, "/"), searchListPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	var apiResp visitJejuAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	return &apiResp, nil
}

// convertToTouristInfo APIのアイテムをレスポンスモデルに変換する
// 欠損フィールドを補完する: 紹介文が空ならタイトルから合成、タグが空なら
// alltagを最大100文字に切り詰めて使用、住所は道路名住所を優先する
func convertToTouristInfo(item *visitJejuItem) *model.TouristInfo {
	var photoID *int64
	var imgPath string
	if item.RepPhoto != nil && item.RepPhoto.PhotoID != nil {
		photoID = item.RepPhoto.PhotoID.PhotoID
		imgPath = item.RepPhoto.PhotoID.ImgPath
	}

	introduction := strings.TrimSpace(item.Introduction)
	if introduction == "" {
		introduction = item.Title + "に関する観光地情報です。"
	}

	tag := strings.TrimSpace(item.Tag)
	if tag == "" {
		tag = item.AllTag
		if runes := []rune(tag); len(runes) > maxTagLength {
			tag = string(runes[:maxTagLength]) + "..."
		}
	}

	address := strings.TrimSpace(item.RoadAddress)
	if address == "" {
		address = item.Address
	}

	return &model.TouristInfo{
		ContentsID:   item.ContentsID,
		Title:        item.Title,
		Introduction: introduction,
		Tag:          tag,
		Address:      address,
		PhotoID:      photoID,
		ImgPath:      imgPath,
	}
}

// --- ビジットジェジュAPIのレスポンスをパースするための構造体 ---

type visitJejuAPIResponse struct {
	Result        string          `json:"result"`
	ResultMessage string          `json:"resultMessage"`
	TotalCount    int             `json:"totalCount"`
	ResultCount   int             `json:"resultCount"`
	PageSize      int             `json:"pageSize"`
	PageCount     int             `json:"pageCount"`
	CurrentPage   int             `json:"currentPage"`
	Items         []visitJejuItem `json:"items"`
}

type visitJejuItem struct {
	ContentsID   string        `json:"contentsid"`
	Title        string        `json:"title"`
	Introduction string        `json:"introduction"`
	Address      string        `json:"address"`
	RoadAddress  string        `json:"roadaddress"`
	Tag          string        `json:"tag"`
	AllTag       string        `json:"alltag"`
	Latitude     *float64      `json:"latitude"`
	Longitude    *float64      `json:"longitude"`
	PhoneNo      string        `json:"phoneno"`
	PostCode     string        `json:"postcode"`
	RepPhoto     *repPhoto     `json:"repPhoto"`
	ContentsCD   *categoryCode `json:"contentscd"`
	Region1CD    *categoryCode `json:"region1cd"`
	Region2CD    *categoryCode `json:"region2cd"`
}

type repPhoto struct {
	DescSEO string       `json:"descseo"`
	PhotoID *photoDetail `json:"photoid"`
}

type photoDetail struct {
	PhotoID       *int64 `json:"photoid"`
	ImgPath       string `json:"imgpath"`
	ThumbnailPath string `json:"thumbnailpath"`
}

type categoryCode struct {
	Value string `json:"value"`
	Label string `json:"label"`
	RefID string `json:"refId"`
}
