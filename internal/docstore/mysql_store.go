// Package docstore 提供基于MySQL的文档存储实现。
// 文档以 JSON 存放在 documents 表中，批量写入通过事务保证原子性；
// 每次提交后向订阅者推送受影响集合的完整快照。
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// MySQLStore MySQL文档存储实现
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
	hub    *subscriberHub
	genID  func() string
}

// NewMySQLStore 创建MySQL文档存储实例
func NewMySQLStore(db *sql.DB, logger *zap.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: logger,
		hub:    newSubscriberHub(),
		genID:  newDocumentID,
	}
}

// Subscribe 订阅集合快照，注册后立即推送一次当前快照。
// 快照读取失败时推送空快照并记录日志，订阅本身不失败。
func (s *MySQLStore) Subscribe(collection string, fn SnapshotFunc) func() {
	unsub := s.hub.add(collection, fn)
	docs, err := s.loadCollection(context.Background(), collection)
	if err != nil {
		s.logger.Error("load initial snapshot failed",
			zap.String("collection", collection), zap.Error(err))
	}
	fn(docs)
	return unsub
}

// Add 新增文档，返回存储分配的 ID
func (s *MySQLStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := s.genID()
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	query := `INSERT INTO documents (collection, doc_id, data) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, collection, id, data); err != nil {
		return "", fmt.Errorf("failed to add document: %w", err)
	}

	s.publish(ctx, collection)
	return id, nil
}

// Update 按 ID 合并部分字段。读取-合并-写回放在一个事务中执行。
func (s *MySQLStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := mergeInTx(ctx, tx, collection, id, fields); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}

	s.publish(ctx, collection)
	return nil
}

// Delete 按 ID 删除文档
func (s *MySQLStore) Delete(ctx context.Context, collection, id string) error {
	query := `DELETE FROM documents WHERE collection = ? AND doc_id = ?`
	if _, err := s.db.ExecContext(ctx, query, collection, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	s.publish(ctx, collection)
	return nil
}

// BatchWrite 原子批量部分更新：全部操作放在单个事务中，
// 任意一条失败则整体回滚，不会出现部分生效的中间状态。
func (s *MySQLStore) BatchWrite(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	touched := make(map[string]struct{})
	for _, w := range writes {
		if err := mergeInTx(ctx, tx, w.Collection, w.ID, w.Fields); err != nil {
			return err
		}
		touched[w.Collection] = struct{}{}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	for collection := range touched {
		s.publish(ctx, collection)
	}
	return nil
}

// Close 关闭存储。底层连接由 database 包统一管理，这里无需关闭。
func (s *MySQLStore) Close() error { return nil }

// mergeInTx 在事务内完成单文档的读取-合并-写回。
// SELECT ... FOR UPDATE 锁住目标行，避免并发合并互相覆盖。
func mergeInTx(ctx context.Context, tx *sql.Tx, collection, id string, fields map[string]any) error {
	var raw []byte
	query := `SELECT data FROM documents WHERE collection = ? AND doc_id = ? FOR UPDATE`
	err := tx.QueryRowContext(ctx, query, collection, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return ErrDocNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	for k, v := range fields {
		doc[k] = v
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	update := `UPDATE documents SET data = ? WHERE collection = ? AND doc_id = ?`
	if _, err := tx.ExecContext(ctx, update, data, collection, id); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}

// loadCollection 读取集合的全部文档，按 doc_id 排序保证快照顺序稳定
func (s *MySQLStore) loadCollection(ctx context.Context, collection string) ([]Document, error) {
	query := `SELECT doc_id, data FROM documents WHERE collection = ? ORDER BY doc_id`
	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			// 单条损坏的文档跳过，不影响整个快照
			s.logger.Warn("skip malformed document",
				zap.String("collection", collection), zap.String("doc_id", id), zap.Error(err))
			continue
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	return docs, rows.Err()
}

// publish 加载当前快照并推送给订阅者
func (s *MySQLStore) publish(ctx context.Context, collection string) {
	docs, err := s.loadCollection(ctx, collection)
	if err != nil {
		s.logger.Error("load snapshot failed",
			zap.String("collection", collection), zap.Error(err))
		return
	}
	s.hub.notify(collection, docs)
}
