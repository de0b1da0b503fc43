package es

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/versiontype"
	"github.com/goccy/go-json"
)

// MaxSearchDepth from+size 上限
const MaxSearchDepth = 1000

type FeedRepo interface {
	EnsureIndex(ctx context.Context) error
	IndexFeed(ctx context.Context, feed *FeedES, version int64) error
	DeleteFeed(ctx context.Context, id uint64) error
	SearchFeedIDs(ctx context.Context, keyword string, from, size int) ([]uint64, int64, error)
}

type FeedRepoImpl struct {
	client *elasticsearch.TypedClient
	index  string
}

func NewFeedRepo(client *elasticsearch.TypedClient, index string) FeedRepo {
	if index == "" {
		index = DefaultFeedIndex
	}
	return &FeedRepoImpl{client: client, index: index}
}

// EnsureIndex 索引不存在时按默认映射创建
func (s *FeedRepoImpl) EnsureIndex(ctx context.Context) error {
	exists, err := s.client.Indices.Exists(s.index).Do(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = s.client.Indices.Create(s.index).Raw(strings.NewReader(feedMapping)).Do(ctx)
	return err
}

// IndexFeed 以外部版本号写入，旧版本的重复投递直接忽略
func (s *FeedRepoImpl) IndexFeed(ctx context.Context, feed *FeedES, version int64) error {
	if feed.Tags == nil {
		feed.Tags = make([]string, 0)
	}
	_, err := s.client.Index(s.index).
		Id(strconv.FormatUint(feed.ID, 10)).
		Document(feed).
		Version(strconv.FormatInt(version, 10)).
		VersionType(versiontype.External).
		Do(ctx)
	if hasStatus(err, http.StatusConflict) {
		return nil
	}
	return err
}

func (s *FeedRepoImpl) DeleteFeed(ctx context.Context, id uint64) error {
	_, err := s.client.Delete(s.index, strconv.FormatUint(id, 10)).Do(ctx)
	if hasStatus(err, http.StatusNotFound) {
		return nil
	}
	return err
}

// SearchFeedIDs 描述、标签、作者名检索，只返回可见的有效信息流
func (s *FeedRepoImpl) SearchFeedIDs(ctx context.Context, keyword string, from, size int) ([]uint64, int64, error) {
	if from >= MaxSearchDepth {
		return []uint64{}, 0, nil
	}
	if from+size > MaxSearchDepth {
		size = MaxSearchDepth - from
	}

	resp, err := s.client.Search().
		Index(s.index).
		Query(buildFeedQuery(keyword)).
		Sort(
			types.SortOptions{SortOptions: map[string]types.FieldSort{
				"_score": {Order: &sortorder.Desc},
			}},
			types.SortOptions{SortOptions: map[string]types.FieldSort{
				"created_at": {Order: &sortorder.Desc},
			}},
		).
		From(from).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if resp.Hits.Total != nil {
		total = resp.Hits.Total.Value
	}
	ids := make([]uint64, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		if hit.Source_ == nil {
			continue
		}
		var doc FeedES
		if err = json.Unmarshal(hit.Source_, &doc); err != nil {
			continue
		}
		ids = append(ids, doc.ID)
	}
	return ids, total, nil
}

func buildFeedQuery(keyword string) *types.Query {
	tag := strings.TrimPrefix(strings.TrimSpace(keyword), "#")
	return &types.Query{
		Bool: &types.BoolQuery{
			Should: []types.Query{
				{
					MultiMatch: &types.MultiMatchQuery{
						Query:  keyword,
						Fields: []string{"description", "username^2"},
					},
				},
				{
					Term: map[string]types.TermQuery{
						"tags": {Value: tag, Boost: ptrFloat32(3.0)},
					},
				},
			},
			MinimumShouldMatch: 1,
			Filter: []types.Query{
				{Term: map[string]types.TermQuery{"status": {Value: "ACTIVE"}}},
				{Term: map[string]types.TermQuery{"display_yn": {Value: "Y"}}},
			},
		},
	}
}

func ptrFloat32(v float32) *float32 {
	return &v
}
