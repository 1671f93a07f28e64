package treestore

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"portal/internal/models"
	"strings"
)

// ErrTxConflict means optimistic retries ran out while other writers kept
// touching the same documents.
var ErrTxConflict = errors.New("treestore: transaction retries exhausted")

const defaultMaxRetries = 8

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisStore keeps one JSON document per top-level segment. Sharded roots
// keep one document per child instead, so writers under different children
// of a busy root do not conflict. Multi-path updates WATCH every touched
// document and commit them in one MULTI/EXEC.
type RedisStore struct {
	client     *redis.Client
	prefix     string
	maxRetries int
	sharded    map[string]struct{}
}

func NewRedisStore(client *redis.Client, prefix string, maxRetries int, shardedRoots ...string) *RedisStore {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	sharded := make(map[string]struct{}, len(shardedRoots))
	for _, r := range shardedRoots {
		if r = models.JoinPath(r); r != "" && !strings.Contains(r, "/") {
			sharded[r] = struct{}{}
		}
	}
	return &RedisStore{
		client:     client,
		prefix:     prefix,
		maxRetries: maxRetries,
		sharded:    sharded,
	}
}

func (s *RedisStore) key(doc string) string {
	return s.prefix + doc
}

func (s *RedisStore) isSharded(root string) bool {
	_, ok := s.sharded[root]
	return ok
}

// locate returns the document holding segs and the path inside it.
func (s *RedisStore) locate(segs []string) (string, []string) {
	if len(segs) >= 2 && s.isSharded(segs[0]) {
		return segs[0] + "/" + segs[1], segs[2:]
	}
	return segs[0], segs[1:]
}

func (s *RedisStore) load(ctx context.Context, c getter, key string) (models.Node, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Undefined, nil
	}
	if err != nil {
		return models.Undefined, err
	}
	doc, err := models.ParseNode(raw)
	if err != nil {
		return models.Undefined, fmt.Errorf("decode %s: %w", key, err)
	}
	return doc, nil
}

func (s *RedisStore) Read(ctx context.Context, path string) (models.Node, error) {
	segs := models.SplitPath(path)
	if len(segs) == 0 {
		return s.assemble(ctx, s.prefix+"*", s.prefix)
	}
	if len(segs) == 1 && s.isSharded(segs[0]) {
		return s.assemble(ctx, s.key(segs[0])+"/*", s.key(segs[0])+"/")
	}
	doc, rel := s.locate(segs)
	node, err := s.load(ctx, s.client, s.key(doc))
	if err != nil {
		return models.Undefined, err
	}
	return models.GetAt(node, rel), nil
}

// assemble builds a subtree from every document matching pattern, placing
// each under its key with trim removed.
func (s *RedisStore) assemble(ctx context.Context, pattern, trim string) (models.Node, error) {
	root := models.Undefined
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		doc, err := s.load(ctx, s.client, key)
		if err != nil {
			return models.Undefined, err
		}
		root = models.SetAt(root, models.SplitPath(strings.TrimPrefix(key, trim)), doc)
	}
	if err := iter.Err(); err != nil {
		return models.Undefined, err
	}
	return root, nil
}

// shards lists the children of a sharded root that have a document.
func (s *RedisStore) shards(ctx context.Context, root string) ([]string, error) {
	trim := s.key(root) + "/"
	var names []string
	iter := s.client.Scan(ctx, 0, trim+"*", 100).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), trim))
	}
	return names, iter.Err()
}

// expand rewrites a write to a whole sharded root into one write per child
// document, keeping its position in the ordered updates.
func (s *RedisStore) expand(ctx context.Context, ordered []update) ([]update, error) {
	out := make([]update, 0, len(ordered))
	for _, u := range ordered {
		if len(u.segs) != 1 || !s.isSharded(u.segs[0]) {
			out = append(out, u)
			continue
		}
		root := u.segs[0]
		kind := u.value.Kind()
		if u.value.IsDefined() && kind != models.KindObject && kind != models.KindArray {
			return nil, fmt.Errorf("%w: %s only holds child documents", ErrInvalidPath, root)
		}

		existing, err := s.shards(ctx, root)
		if err != nil {
			return nil, err
		}
		keep := make(map[string]struct{})
		for _, child := range u.value.Keys() {
			keep[child] = struct{}{}
			out = append(out, update{segs: []string{root, child}, value: u.value.Member(child)})
		}
		for _, child := range existing {
			if _, ok := keep[child]; !ok {
				out = append(out, update{segs: []string{root, child}, value: models.Undefined})
			}
		}
	}
	return out, nil
}

func (s *RedisStore) AtomicUpdate(ctx context.Context, updates map[string]models.Node) error {
	ordered, err := orderUpdates(updates)
	if err != nil {
		return err
	}
	ordered, err = s.expand(ctx, ordered)
	if err != nil {
		return err
	}

	type located struct {
		doc   string
		rel   []string
		value models.Node
	}
	writes := make([]located, 0, len(ordered))
	docNames := make([]string, 0, len(ordered))
	seen := make(map[string]struct{}, len(ordered))
	for _, u := range ordered {
		doc, rel := s.locate(u.segs)
		writes = append(writes, located{doc: doc, rel: rel, value: u.value})
		if _, ok := seen[doc]; !ok {
			seen[doc] = struct{}{}
			docNames = append(docNames, doc)
		}
	}
	if len(docNames) == 0 {
		return nil
	}
	keys := make([]string, len(docNames))
	for i, d := range docNames {
		keys[i] = s.key(d)
	}

	txf := func(tx *redis.Tx) error {
		docs := make(map[string]models.Node, len(docNames))
		for _, d := range docNames {
			doc, err := s.load(ctx, tx, s.key(d))
			if err != nil {
				return err
			}
			docs[d] = doc
		}
		for _, w := range writes {
			docs[w.doc] = models.SetAt(docs[w.doc], w.rel, w.value)
		}

		payloads := make(map[string][]byte, len(docs))
		for d, doc := range docs {
			if !doc.IsDefined() {
				continue
			}
			raw, err := doc.MarshalJSON()
			if err != nil {
				return err
			}
			payloads[d] = raw
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, d := range docNames {
				if raw, ok := payloads[d]; ok {
					pipe.Set(ctx, s.key(d), raw, 0)
				} else {
					pipe.Del(ctx, s.key(d))
				}
			}
			return nil
		})
		return err
	}

	for i := 0; i < s.maxRetries; i++ {
		err := s.client.Watch(ctx, txf, keys...)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return ErrTxConflict
}

func (s *RedisStore) Delete(ctx context.Context, path string) error {
	return s.AtomicUpdate(ctx, map[string]models.Node{path: models.Undefined})
}

// Health pings the backing Redis.
func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
