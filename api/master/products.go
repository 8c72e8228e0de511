package master

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"SalesPulse/api"
	"SalesPulse/api/constants"

	"github.com/gorilla/mux"
)

// GetProducts lists products with their category names, optionally
// filtered by ?category_id=.
func GetProducts(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := `
			SELECT p.id, p.name, COALESCE(p.sub_category, ''), COALESCE(p.type_of_sales, ''),
			       p.category_id, pc.name
			FROM products p
			JOIN product_categories pc ON pc.id = p.category_id`
		var args []interface{}
		if v := r.URL.Query().Get("category_id"); v != "" {
			categoryID, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidID)
				return
			}
			query += ` WHERE p.category_id = $1`
			args = append(args, categoryID)
		}
		query += ` ORDER BY pc.name, p.name`

		rows, err := db.QueryContext(r.Context(), query, args...)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		defer rows.Close()

		products := []map[string]interface{}{}
		for rows.Next() {
			var id, categoryID int64
			var name, subCategory, typeOfSales, categoryName string
			if err := rows.Scan(&id, &name, &subCategory, &typeOfSales, &categoryID, &categoryName); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
				return
			}
			products = append(products, map[string]interface{}{
				"id":            id,
				"name":          name,
				"sub_category":  subCategory,
				"type_of_sales": typeOfSales,
				"category_id":   categoryID,
				"category":      categoryName,
			})
		}
		if err := rows.Err(); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"products": products})
	}
}

type productRequest struct {
	Name        string `json:"name"`
	CategoryID  int64  `json:"category_id"`
	SubCategory string `json:"sub_category"`
	TypeOfSales string `json:"type_of_sales"`
}

// CreateProduct inserts a product under an existing category. The
// (name, category) pair must be unique.
func CreateProduct(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrProductNameRequired)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrProductNameRequired)
			return
		}

		var categoryExists bool
		err := db.QueryRowContext(r.Context(),
			`SELECT EXISTS (SELECT 1 FROM product_categories WHERE id = $1)`,
			req.CategoryID).Scan(&categoryExists)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		if !categoryExists {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrCategoryNotFound)
			return
		}

		var id int64
		err = db.QueryRowContext(r.Context(), `
			INSERT INTO products (name, category_id, sub_category, type_of_sales)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''))
			ON CONFLICT (name, category_id) DO NOTHING
			RETURNING id`,
			req.Name, req.CategoryID, strings.TrimSpace(req.SubCategory), strings.TrimSpace(req.TypeOfSales)).Scan(&id)
		if err == sql.ErrNoRows {
			api.RespondWithError(w, http.StatusConflict, fmt.Sprintf(constants.ErrProductExists, req.Name))
			return
		}
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		api.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
			"id":          id,
			"name":        req.Name,
			"category_id": req.CategoryID,
		})
	}
}

// UpdateProduct edits a product's name, category and attributes.
func UpdateProduct(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidID)
			return
		}
		var req productRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrProductNameRequired)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrProductNameRequired)
			return
		}

		var taken bool
		err = db.QueryRowContext(r.Context(), `
			SELECT EXISTS (
				SELECT 1 FROM products
				WHERE name = $1 AND category_id = $2 AND id <> $3
			)`, req.Name, req.CategoryID, id).Scan(&taken)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		if taken {
			api.RespondWithError(w, http.StatusConflict, fmt.Sprintf(constants.ErrProductExists, req.Name))
			return
		}

		res, err := db.ExecContext(r.Context(), `
			UPDATE products
			SET name = $1, category_id = $2,
			    sub_category = NULLIF($3, ''), type_of_sales = NULLIF($4, '')
			WHERE id = $5`,
			req.Name, req.CategoryID, strings.TrimSpace(req.SubCategory), strings.TrimSpace(req.TypeOfSales), id)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrProductNotFound)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"id":          id,
			"name":        req.Name,
			"category_id": req.CategoryID,
		})
	}
}

// DeleteProduct refuses to remove a product that fact rows still reference.
func DeleteProduct(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidID)
			return
		}

		var refs int
		err = db.QueryRowContext(r.Context(), `
			SELECT (SELECT COUNT(*) FROM sales_data WHERE product_id = $1)
			     + (SELECT COUNT(*) FROM budget_projection WHERE product_id = $1)
			     + (SELECT COUNT(*) FROM production_data WHERE product_id = $1)`,
			id).Scan(&refs)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		if refs > 0 {
			api.RespondWithError(w, http.StatusConflict, constants.ErrProductInUse)
			return
		}

		res, err := db.ExecContext(r.Context(), `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrProductNotFound)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Product deleted successfully",
			"id":      id,
		})
	}
}
