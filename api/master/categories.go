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

// GetCategories lists every product category with its product count.
func GetCategories(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.QueryContext(r.Context(), `
			SELECT pc.id, pc.name, COUNT(p.id)
			FROM product_categories pc
			LEFT JOIN products p ON p.category_id = pc.id
			GROUP BY pc.id, pc.name
			ORDER BY pc.name`)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		defer rows.Close()

		categories := []map[string]interface{}{}
		for rows.Next() {
			var id int64
			var name string
			var productCount int
			if err := rows.Scan(&id, &name, &productCount); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
				return
			}
			categories = append(categories, map[string]interface{}{
				"id":            id,
				"name":          name,
				"product_count": productCount,
			})
		}
		if err := rows.Err(); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
	}
}

// CreateCategory inserts a category, rejecting duplicate names with 409.
func CreateCategory(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrCategoryNameRequired)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrCategoryNameRequired)
			return
		}

		var id int64
		err := db.QueryRowContext(r.Context(), `
			INSERT INTO product_categories (name) VALUES ($1)
			ON CONFLICT (name) DO NOTHING
			RETURNING id`, req.Name).Scan(&id)
		if err == sql.ErrNoRows {
			api.RespondWithError(w, http.StatusConflict, fmt.Sprintf(constants.ErrCategoryExists, req.Name))
			return
		}
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		api.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
			"id":   id,
			"name": req.Name,
		})
	}
}

// UpdateCategory renames a category: 404 when it does not exist, 409 when
// the new name is already taken.
func UpdateCategory(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidID)
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrCategoryNameRequired)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrCategoryNameRequired)
			return
		}

		var taken bool
		err = db.QueryRowContext(r.Context(), `
			SELECT EXISTS (SELECT 1 FROM product_categories WHERE name = $1 AND id <> $2)`,
			req.Name, id).Scan(&taken)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		if taken {
			api.RespondWithError(w, http.StatusConflict, fmt.Sprintf(constants.ErrCategoryExists, req.Name))
			return
		}

		res, err := db.ExecContext(r.Context(),
			`UPDATE product_categories SET name = $1 WHERE id = $2`, req.Name, id)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrCategoryNotFound)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"id":   id,
			"name": req.Name,
		})
	}
}

// DeleteCategory refuses to remove a category that still owns products.
func DeleteCategory(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidID)
			return
		}

		var productCount int
		err = db.QueryRowContext(r.Context(),
			`SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&productCount)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		if productCount > 0 {
			api.RespondWithError(w, http.StatusConflict, constants.ErrCategoryInUse)
			return
		}

		res, err := db.ExecContext(r.Context(),
			`DELETE FROM product_categories WHERE id = $1`, id)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrInternalServer)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrCategoryNotFound)
			return
		}
		api.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Category deleted successfully",
			"id":      id,
		})
	}
}
