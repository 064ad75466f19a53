package apperr

import "github.com/polybooks/polybooks/pkg/zerror"

const (
	ValidationErrorCode          = "VALIDATION_FAILED"
	ProductNotFoundCode          = "PRODUCT_NOT_FOUND"
	ProductSkuConflictCode       = "PRODUCT_SKU_CONFLICT"
	InventoryItemNotFoundCode    = "INVENTORY_ITEM_NOT_FOUND"
	TransactionNotFoundCode      = "TRANSACTION_NOT_FOUND"
	ReferenceConflictCode        = "REFERENCE_NUMBER_CONFLICT"
	InvalidTransactionTypeCode   = "INVALID_TRANSACTION_TYPE"
	InvalidTransactionStatusCode = "INVALID_TRANSACTION_STATUS"
	CustomerNotFoundCode         = "CUSTOMER_NOT_FOUND"
	VendorNotFoundCode           = "VENDOR_NOT_FOUND"
	UserNotFoundCode             = "USER_NOT_FOUND"
	UserConflictCode             = "USER_CONFLICT"
	InvalidCredentialsCode       = "INVALID_CREDENTIALS"
	InvalidTokenCode             = "INVALID_TOKEN"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	ProductNotFoundErr    = zerror.NewNotFound(ProductNotFoundCode, "product not found")
	ProductSkuConflictErr = zerror.NewConflict(ProductSkuConflictCode, "a product with this sku already exists")

	InventoryItemNotFoundErr = zerror.NewNotFound(InventoryItemNotFoundCode, "inventory item not found")

	TransactionNotFoundErr      = zerror.NewNotFound(TransactionNotFoundCode, "transaction not found")
	ReferenceConflictErr        = zerror.NewConflict(ReferenceConflictCode, "a transaction with this reference number already exists")
	InvalidTransactionTypeErr   = zerror.NewValidationFailed(InvalidTransactionTypeCode, "transaction type must be one of: sale, purchase, return, adjustment")
	InvalidTransactionStatusErr = zerror.NewValidationFailed(InvalidTransactionStatusCode, "transaction status must be one of: pending, completed, cancelled")

	CustomerNotFoundErr = zerror.NewNotFound(CustomerNotFoundCode, "customer not found")
	VendorNotFoundErr   = zerror.NewNotFound(VendorNotFoundCode, "vendor not found")

	UserNotFoundErr       = zerror.NewNotFound(UserNotFoundCode, "user not found")
	UserConflictErr       = zerror.NewConflict(UserConflictCode, "a user with this username or email already exists")
	InvalidCredentialsErr = zerror.NewUnauthorized(InvalidCredentialsCode, "invalid username or password")
	InvalidTokenErr       = zerror.NewUnauthorized(InvalidTokenCode, "invalid or expired token")
)
