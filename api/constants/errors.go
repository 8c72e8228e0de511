package constants

// ============================================================================
// UPLOAD ERRORS
// ============================================================================

const (
	ErrNoFile          = "No file uploaded"
	ErrInvalidFileType = "Invalid file type. Please upload a .xlsx or .xls file"
	ErrFormParseFailed = "Failed to parse multipart form"
	ErrUploadNotFound  = "Upload not found"
)

// ============================================================================
// REPORTING ERRORS
// ============================================================================

const (
	ErrNoData        = "No data available. Please upload an Excel file first"
	ErrYearNotFound  = "Year %d not found"
	ErrMonthNotFound = "Month %s not found"
	ErrYearRequired  = "year parameter is required"
	ErrBadYearParam  = "year must be an integer"
	ErrBadMetric     = "metric must be 'sales' or 'production'"
)

// ============================================================================
// REFERENCE DATA ERRORS
// ============================================================================

const (
	ErrCategoryNameRequired = "Category name is required"
	ErrCategoryNotFound     = "Category not found"
	ErrCategoryExists       = "Category with name %s already exists"
	ErrCategoryInUse        = "Category still has products attached"
	ErrProductNameRequired  = "Product name and category_id are required"
	ErrProductNotFound      = "Product not found"
	ErrProductExists        = "Product %s already exists in this category"
	ErrProductInUse         = "Product is referenced by uploaded data"
)

// ============================================================================
// GENERAL ERRORS
// ============================================================================

const (
	ErrInvalidID      = "Invalid ID specified"
	ErrInternalServer = "Internal server error. Please contact support"
)
