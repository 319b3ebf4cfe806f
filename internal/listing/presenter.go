package listing

import "ProductDesk/internal/product"

// Presenter receives every state change. All calls arrive on the loop
// goroutine.
type Presenter interface {
	ShowBusy(msg string)
	ShowProducts(products []product.Product)
	ShowNotice(msg string)
	ShowError(msg string)
}
