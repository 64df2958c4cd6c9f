// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore Postgres 实现
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore 创建基于 PostgreSQL 的 Store；poolSize<=0 时使用 pgx 默认值
func NewPostgresStore(ctx context.Context, dsn string, poolSize int) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if poolSize > 0 {
		config.MaxConns = int32(poolSize)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

// Close 关闭连接池
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS shops (
	shop_id       TEXT PRIMARY KEY,
	shop_name     TEXT NOT NULL DEFAULT '',
	persona       TEXT NOT NULL DEFAULT '',
	return_policy TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS products (
	id              BIGSERIAL PRIMARY KEY,
	product_id      TEXT NOT NULL UNIQUE,
	shop_id         TEXT NOT NULL DEFAULT '',
	title           TEXT NOT NULL,
	category        TEXT NOT NULL DEFAULT '',
	price           NUMERIC(10,2) NOT NULL DEFAULT 0,
	description     TEXT NOT NULL DEFAULT '',
	specs_json      JSONB NOT NULL DEFAULT '{}'::jsonb,
	image_url       TEXT NOT NULL DEFAULT '',
	carousel_images JSONB NOT NULL DEFAULT '[]'::jsonb,
	detail_images   JSONB NOT NULL DEFAULT '[]'::jsonb,
	detailed_text   TEXT NOT NULL DEFAULT '',
	is_active       BOOLEAN NOT NULL DEFAULT true,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS orders (
	id           BIGSERIAL PRIMARY KEY,
	order_no     TEXT NOT NULL UNIQUE,
	status       TEXT NOT NULL,
	receiver     TEXT NOT NULL DEFAULT '',
	phone_tail   TEXT NOT NULL DEFAULT '',
	total_amount NUMERIC(10,2) NOT NULL DEFAULT 0,
	tracking_no  TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS order_items (
	id         BIGSERIAL PRIMARY KEY,
	order_id   BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id TEXT NOT NULL,
	shop_id    TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	price      NUMERIC(10,2) NOT NULL DEFAULT 0,
	qty        INT NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS after_sales (
	after_sale_id TEXT PRIMARY KEY,
	order_no      TEXT NOT NULL,
	type          TEXT NOT NULL,
	reason        TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	next_step     TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS tickets (
	ticket_id  TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	detail     TEXT NOT NULL,
	order_no   TEXT NOT NULL DEFAULT '',
	priority   TEXT NOT NULL DEFAULT 'P2',
	status     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Migrate 建表（幂等）
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("commerce 建表失败: %w", err)
	}
	return nil
}

// Seed 写入种子数据，已存在的主键跳过
func (s *PostgresStore) Seed(ctx context.Context, seed *Seed) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, sh := range seed.Shops {
		if _, err := tx.Exec(ctx,
			`INSERT INTO shops (shop_id, shop_name, persona, return_policy) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (shop_id) DO NOTHING`,
			sh.ShopID, sh.ShopName, sh.Persona, sh.ReturnPolicy); err != nil {
			return err
		}
	}
	for _, p := range seed.Products {
		specs, _ := json.Marshal(nonNilMap(p.Specs))
		carousel, _ := json.Marshal(nonNilSlice(p.CarouselImages))
		detail, _ := json.Marshal(nonNilSlice(p.DetailImages))
		if _, err := tx.Exec(ctx,
			`INSERT INTO products (product_id, shop_id, title, category, price, description, specs_json,
			 image_url, carousel_images, detail_images, detailed_text, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 ON CONFLICT (product_id) DO NOTHING`,
			p.ProductID, p.ShopID, p.Title, p.Category, p.Price, p.Description, specs,
			p.ImageURL, carousel, detail, p.DetailedText, p.IsActive); err != nil {
			return err
		}
	}
	for _, o := range seed.Orders {
		createdAt := o.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO orders (order_no, status, receiver, phone_tail, total_amount, tracking_no, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (order_no) DO NOTHING RETURNING id`,
			o.OrderNo, o.Status, o.Receiver, o.PhoneTail, o.TotalAmount, o.TrackingNo, createdAt).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return err
		}
		for _, it := range o.Items {
			if _, err := tx.Exec(ctx,
				`INSERT INTO order_items (order_id, product_id, shop_id, title, price, qty) VALUES ($1, $2, $3, $4, $5, $6)`,
				id, it.ProductID, it.ShopID, it.Title, it.Price, it.Qty); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) GetOrder(ctx context.Context, orderNo string) (*Order, error) {
	o := &Order{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, order_no, status, receiver, phone_tail, total_amount::float8, tracking_no, created_at
		 FROM orders WHERE order_no = $1`,
		orderNo).Scan(&o.ID, &o.OrderNo, &o.Status, &o.Receiver, &o.PhoneTail, &o.TotalAmount, &o.TrackingNo, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	rows, err := s.pool.Query(ctx,
		`SELECT product_id, shop_id, title, price::float8, qty FROM order_items WHERE order_id = $1 ORDER BY id`,
		o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ProductID, &it.ShopID, &it.Title, &it.Price, &it.Qty); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

const productColumns = `product_id, shop_id, title, category, price::float8, description, specs_json,
	image_url, carousel_images, detail_images, detailed_text, is_active, created_at`

func scanProduct(row pgx.Row) (*Product, error) {
	p := &Product{}
	var specs, carousel, detail []byte
	if err := row.Scan(&p.ProductID, &p.ShopID, &p.Title, &p.Category, &p.Price, &p.Description, &specs,
		&p.ImageURL, &carousel, &detail, &p.DetailedText, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	// 历史数据里 JSON 列可能不规范，解析失败按空值处理
	if err := json.Unmarshal(specs, &p.Specs); err != nil || p.Specs == nil {
		p.Specs = map[string]any{}
	}
	if err := json.Unmarshal(carousel, &p.CarouselImages); err != nil {
		p.CarouselImages = nil
	}
	if err := json.Unmarshal(detail, &p.DetailImages); err != nil {
		p.DetailImages = nil
	}
	return p, nil
}

func (s *PostgresStore) GetProduct(ctx context.Context, productID string) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE product_id = $1 LIMIT 1`, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) SearchProducts(ctx context.Context, keyword string, limit int) ([]*Product, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE is_active AND strpos(lower(regexp_replace(title, '\s', '', 'g')), $1) > 0
		 ORDER BY id DESC LIMIT $2`,
		NormalizeKeyword(keyword), limit)
}

func (s *PostgresStore) ListProducts(ctx context.Context, activeOnly bool) ([]*Product, error) {
	q := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		q += ` WHERE is_active`
	}
	return s.queryProducts(ctx, q+` ORDER BY id DESC`)
}

func (s *PostgresStore) queryProducts(ctx context.Context, q string, args ...any) ([]*Product, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetShop(ctx context.Context, shopID string) (*Shop, error) {
	sh := &Shop{}
	err := s.pool.QueryRow(ctx,
		`SELECT shop_id, shop_name, persona, return_policy FROM shops WHERE shop_id = $1`,
		shopID).Scan(&sh.ShopID, &sh.ShopName, &sh.Persona, &sh.ReturnPolicy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sh, nil
}

func (s *PostgresStore) CreateAfterSale(ctx context.Context, as *AfterSale) error {
	if as == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO after_sales (after_sale_id, order_no, type, reason, status, next_step, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		as.AfterSaleID, as.OrderNo, as.Type, as.Reason, as.Status, as.NextStep, as.CreatedAt)
	return err
}

func (s *PostgresStore) ListAfterSales(ctx context.Context, limit int) ([]*AfterSale, error) {
	q := `SELECT after_sale_id, order_no, type, reason, status, next_step, created_at FROM after_sales ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*AfterSale
	for rows.Next() {
		as := &AfterSale{}
		if err := rows.Scan(&as.AfterSaleID, &as.OrderNo, &as.Type, &as.Reason, &as.Status, &as.NextStep, &as.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, as)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateTicket(ctx context.Context, t *Ticket) error {
	if t == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tickets (ticket_id, type, detail, order_no, priority, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.TicketID, t.Type, t.Detail, t.OrderNo, t.Priority, t.Status, t.CreatedAt)
	return err
}

func (s *PostgresStore) ListTickets(ctx context.Context, limit int) ([]*Ticket, error) {
	q := `SELECT ticket_id, type, detail, order_no, priority, status, created_at FROM tickets ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Ticket
	for rows.Next() {
		t := &Ticket{}
		if err := rows.Scan(&t.TicketID, &t.Type, &t.Detail, &t.OrderNo, &t.Priority, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func nonNilSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
