package domain

// Validator — чистый предикат над снимком заказа. Используется и как
// precondition (пускать ли команду), и как postcondition (подтвердился ли
// эффект команды при reconcile). Реализации обязаны переносить nil-снимок:
// «is-x» проверки возвращают false, IsEmpty и Always — true.
type Validator interface {
	Validate(order *Order) bool
}

// --- Статусные предикаты ---

type hasStatus struct {
	statuses []OrderStatus
}

// HasStatus — статус заказа входит в заданный набор.
func HasStatus(statuses ...OrderStatus) Validator {
	return hasStatus{statuses: statuses}
}

func (v hasStatus) Validate(order *Order) bool {
	if order == nil {
		return false
	}
	for _, s := range v.statuses {
		if order.Status == s {
			return true
		}
	}
	return false
}

// IsPending — заказ в статусе pending.
func IsPending() Validator { return HasStatus(OrderStatusPending) }

// IsReserved — заказ в статусе reserved.
func IsReserved() Validator { return HasStatus(OrderStatusReserved) }

// IsCheckedOut — заказ в статусе checkOut.
func IsCheckedOut() Validator { return HasStatus(OrderStatusCheckOut) }

// IsCompleted — заказ в статусе completed.
func IsCompleted() Validator { return HasStatus(OrderStatusCompleted) }

// IsCanceled — заказ в статусе canceled.
func IsCanceled() Validator { return HasStatus(OrderStatusCanceled) }

// IsTimeout — заказ в статусе timeout.
func IsTimeout() Validator { return HasStatus(OrderStatusTimeout) }

type isInFinalState struct{}

// IsInFinalState — заказ в терминальном статусе. Канонический набор:
// completed, canceled, timeout, failed; reserved терминальным НЕ считается.
func IsInFinalState() Validator { return isInFinalState{} }

func (isInFinalState) Validate(order *Order) bool {
	return HasStatus(OrderStatusCompleted, OrderStatusCanceled, OrderStatusTimeout, OrderStatusFailed).Validate(order)
}

type isPaid struct{}

// IsPaid — заказ полностью оплачен.
func IsPaid() Validator { return isPaid{} }

func (isPaid) Validate(order *Order) bool {
	return order != nil && order.PaymentStatus == PaymentStatusPaid
}

type isProcessingPayment struct{}

// IsProcessingPayment — заказ оформлен, платежи созданы, но оплата ещё не подтверждена.
func IsProcessingPayment() Validator { return isProcessingPayment{} }

func (isProcessingPayment) Validate(order *Order) bool {
	if order == nil {
		return false
	}
	return order.Status == OrderStatusCheckOut &&
		order.PaymentStatus != PaymentStatusPaid &&
		len(order.Payments) > 0
}

type hasCustomer struct{}

// HasCustomer — к заказу привязан клиент.
func HasCustomer() Validator { return hasCustomer{} }

func (hasCustomer) Validate(order *Order) bool {
	return order != nil && order.Customer != nil
}

// --- Предикаты по позициям ---

type isEmpty struct{}

// IsEmpty — корзина пуста: ни одной позиции вне статусов removed/returned.
// Отсутствующий заказ считается пустым.
func IsEmpty() Validator { return isEmpty{} }

func (isEmpty) Validate(order *Order) bool {
	if order == nil {
		return true
	}
	return order.ActiveItemCount() == 0
}

type hasItemsWithStatus struct {
	statuses []LineItemStatus
}

// HasItemsWithStatus — хотя бы одна позиция в одном из заданных статусов.
func HasItemsWithStatus(statuses ...LineItemStatus) Validator {
	return hasItemsWithStatus{statuses: statuses}
}

func (v hasItemsWithStatus) Validate(order *Order) bool {
	if order == nil {
		return false
	}
	for _, item := range order.LineItems {
		for _, s := range v.statuses {
			if item.Status == s {
				return true
			}
		}
	}
	return false
}

type itemsHaveStatus struct {
	lineItemIDs []string
	status      LineItemStatus
}

// ItemsHaveStatus — каждая из перечисленных позиций находится ровно в
// заданном статусе. Пустой список идентификаторов истинен тривиально.
// Непустой список при заказе без позиций — ложь: так отлавливается
// устаревшее чтение, обогнавшее команду.
func ItemsHaveStatus(lineItemIDs []string, status LineItemStatus) Validator {
	return itemsHaveStatus{lineItemIDs: lineItemIDs, status: status}
}

func (v itemsHaveStatus) Validate(order *Order) bool {
	if order == nil {
		return false
	}
	if len(v.lineItemIDs) > 0 && len(order.LineItems) == 0 {
		return false
	}
	for _, id := range v.lineItemIDs {
		found := false
		for _, item := range order.LineItems {
			if item.ID == id && item.Status == v.status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type itemsHaveStatusOneOf struct {
	lineItemIDs []string
	statuses    []LineItemStatus
}

// ItemsHaveStatusOneOf — обратная формулировка: ни одна из перечисленных
// позиций не должна находиться в статусе вне допустимого набора.
func ItemsHaveStatusOneOf(lineItemIDs []string, statuses ...LineItemStatus) Validator {
	return itemsHaveStatusOneOf{lineItemIDs: lineItemIDs, statuses: statuses}
}

func (v itemsHaveStatusOneOf) Validate(order *Order) bool {
	if order == nil {
		return false
	}
	if len(v.lineItemIDs) > 0 && len(order.LineItems) == 0 {
		return false
	}
	for _, item := range order.LineItems {
		if !containsString(v.lineItemIDs, item.ID) {
			continue
		}
		allowed := false
		for _, s := range v.statuses {
			if item.Status == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	return true
}

type batchItemsStatus struct {
	reservedIDs  []string
	removedIDs   []string
	completedIDs []string
}

// BatchItemsStatus — конъюнкция трёх ItemsHaveStatus, по одной на корзину
// статусов. Покрывает смешанные батчи: часть позиций добавлена, часть
// удалена одной командой.
func BatchItemsStatus(reservedIDs, removedIDs, completedIDs []string) Validator {
	return batchItemsStatus{reservedIDs: reservedIDs, removedIDs: removedIDs, completedIDs: completedIDs}
}

func (v batchItemsStatus) Validate(order *Order) bool {
	return ItemsHaveStatus(v.reservedIDs, LineItemStatusReserved).Validate(order) &&
		ItemsHaveStatus(v.removedIDs, LineItemStatusRemoved).Validate(order) &&
		ItemsHaveStatus(v.completedIDs, LineItemStatusCompleted).Validate(order)
}

// --- Токены и платежи ---

type hasToken struct {
	token string
}

// HasToken — значение токена присутствует среди токенов заказа.
func HasToken(token string) Validator {
	return hasToken{token: token}
}

func (v hasToken) Validate(order *Order) bool {
	if order == nil {
		return false
	}
	for _, t := range order.Tokens {
		if t.Token == v.token {
			return true
		}
	}
	return false
}

type hasPaymentWithCurrencyCode struct {
	currencyCodes []string
}

// HasPaymentWithCurrencyCode — на заказе есть платежи во всех перечисленных валютах.
func HasPaymentWithCurrencyCode(currencyCodes ...string) Validator {
	return hasPaymentWithCurrencyCode{currencyCodes: currencyCodes}
}

func (v hasPaymentWithCurrencyCode) Validate(order *Order) bool {
	if order == nil || len(order.Payments) == 0 {
		return false
	}
	for _, code := range v.currencyCodes {
		found := false
		for _, p := range order.Payments {
			if p.Currency.Code == code {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type needsPaymentWithCurrency struct {
	currencyCode string
}

// NeedsPaymentWithCurrency — заказ требует оплаты в заданной валюте.
func NeedsPaymentWithCurrency(currencyCode string) Validator {
	return needsPaymentWithCurrency{currencyCode: currencyCode}
}

func (v needsPaymentWithCurrency) Validate(order *Order) bool {
	if order == nil {
		return false
	}
	for _, rp := range order.RequiredPayments {
		if rp.Currency.Code == v.currencyCode {
			return true
		}
	}
	return false
}

// settledPayments возвращает платежи, не отклонённые и не отменённые.
func settledPayments(order *Order) []OrderPayment {
	if order == nil {
		return nil
	}
	payments := make([]OrderPayment, 0, len(order.Payments))
	for _, p := range order.Payments {
		if p.Status == "refused" || p.Status == "cancelled" {
			continue
		}
		payments = append(payments, p)
	}
	return payments
}

func paidAmountIn(payments []OrderPayment, currencyCode string) float64 {
	var total float64
	for _, p := range payments {
		if p.Currency.Code == currencyCode {
			total += p.Amount
		}
	}
	return total
}

type needsPaymentWithISOCurrency struct{}

// NeedsPaymentWithISOCurrency — остались недоплаченные суммы в стандартных
// трёхбуквенных ISO-валютах.
func NeedsPaymentWithISOCurrency() Validator { return needsPaymentWithISOCurrency{} }

func (needsPaymentWithISOCurrency) Validate(order *Order) bool {
	if order == nil {
		return false
	}
	payments := settledPayments(order)
	for _, rp := range order.RequiredPayments {
		if len(rp.Currency.Code) == 3 && paidAmountIn(payments, rp.Currency.Code) < rp.Amount {
			return true
		}
	}
	return false
}

type needsPaymentWithCustomCurrency struct{}

// NeedsPaymentWithCustomCurrency — остались недоплаченные суммы в кастомных
// валютах (код длиннее трёх символов).
func NeedsPaymentWithCustomCurrency() Validator { return needsPaymentWithCustomCurrency{} }

func (needsPaymentWithCustomCurrency) Validate(order *Order) bool {
	if order == nil {
		return false
	}
	payments := settledPayments(order)
	for _, rp := range order.RequiredPayments {
		if len(rp.Currency.Code) > 3 && paidAmountIn(payments, rp.Currency.Code) < rp.Amount {
			return true
		}
	}
	return false
}

type needsLoyaltyCardPayment struct{}

// NeedsLoyaltyCardPayment — остались неоплаченные обязательства по картам лояльности.
func NeedsLoyaltyCardPayment() Validator { return needsLoyaltyCardPayment{} }

func (needsLoyaltyCardPayment) Validate(order *Order) bool {
	if order == nil {
		return false
	}
	payments := settledPayments(order)
	for _, rp := range order.RequiredLoyaltyCardPayments {
		var paid float64
		count := 0
		for _, p := range payments {
			if p.Currency.Code == rp.Currency.Code && p.PSP == "loyalty" && p.Method == rp.CardType {
				paid += p.Amount
				count++
			}
		}
		if count == 0 || paid < rp.Amount {
			return true
		}
	}
	return false
}

type requiredPaymentsMatchLineItems struct{}

// RequiredPaymentsMatchLineItems пересчитывает требуемые платежи по ценам
// зарезервированных позиций, сгруппированным по валюте, и сверяет их с
// requiredPayments заказа повалютно. Любая позиция в pending/awaitingClaim
// делает расчёт предварительным, поэтому предикат возвращает false.
func RequiredPaymentsMatchLineItems() Validator { return requiredPaymentsMatchLineItems{} }

func (requiredPaymentsMatchLineItems) Validate(order *Order) bool {
	if order == nil {
		return false
	}

	type bucket struct {
		code   string
		amount float64
	}
	var calculated []bucket
	for _, item := range order.LineItems {
		if item.Status == LineItemStatusPending || item.Status == LineItemStatusAwaitingClaim {
			return false
		}
		if item.Status != LineItemStatusReserved || item.Currency == nil {
			continue
		}
		idx := -1
		for i, b := range calculated {
			if b.code == item.Currency.Code {
				idx = i
				break
			}
		}
		if idx >= 0 {
			calculated[idx].amount += item.Price
		} else if item.Price > 0 {
			calculated = append(calculated, bucket{code: item.Currency.Code, amount: item.Price})
		}
	}

	for _, b := range calculated {
		matched := false
		for _, rp := range order.RequiredPayments {
			if rp.Currency.Code == b.code {
				matched = rp.Amount == b.amount
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// --- Предикаты-ограждения для операций корзины ---

type canReserve struct{}

// CanReserve — заказ можно резервировать: pending, не пустой и без позиций,
// всё ещё ожидающих обработки.
func CanReserve() Validator { return canReserve{} }

func (canReserve) Validate(order *Order) bool {
	if order == nil {
		return false
	}
	return order.Status == OrderStatusPending &&
		!IsEmpty().Validate(order) &&
		!HasItemsWithStatus(LineItemStatusPending, LineItemStatusAwaitingClaim).Validate(order)
}

type canCheckout struct{}

// CanCheckout — заказ можно оформлять: pending или reserved, не пустой,
// без необработанных позиций.
func CanCheckout() Validator { return canCheckout{} }

func (canCheckout) Validate(order *Order) bool {
	if order == nil {
		return false
	}
	return (order.Status == OrderStatusPending || order.Status == OrderStatusReserved) &&
		!IsEmpty().Validate(order) &&
		!HasItemsWithStatus(LineItemStatusPending, LineItemStatusAwaitingClaim).Validate(order)
}

type canPay struct{}

// CanPay — заказ можно оплачивать: ещё не оплачен, в допустимом статусе,
// не пустой и без необработанных позиций.
func CanPay() Validator { return canPay{} }

func (canPay) Validate(order *Order) bool {
	if order == nil {
		return false
	}
	return order.PaymentStatus != PaymentStatusPaid &&
		(order.Status == OrderStatusPending || order.Status == OrderStatusReserved || order.Status == OrderStatusCheckOut) &&
		!IsEmpty().Validate(order) &&
		!HasItemsWithStatus(LineItemStatusPending, LineItemStatusAwaitingClaim).Validate(order)
}

type canPayOnline struct{}

// CanPayOnline — среди требуемых валют нет CINEVILLE: такие заказы
// оплачиваются только на кассе.
func CanPayOnline() Validator { return canPayOnline{} }

func (canPayOnline) Validate(order *Order) bool {
	if order == nil {
		return true
	}
	for _, rp := range order.RequiredPayments {
		if rp.Currency.Code == "CINEVILLE" {
			return false
		}
	}
	return true
}

// --- Комбинаторы ---

type allValidator struct {
	validators []Validator
}

// All — конъюнкция: истина, когда истинен каждый вложенный предикат.
// Вычисление прерывается на первом ложном.
func All(validators ...Validator) Validator {
	return allValidator{validators: validators}
}

func (v allValidator) Validate(order *Order) bool {
	for _, inner := range v.validators {
		if !inner.Validate(order) {
			return false
		}
	}
	return true
}

type always struct{}

// Always — нейтральный элемент конъюнкции: всегда истина.
func Always() Validator { return always{} }

func (always) Validate(*Order) bool { return true }

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
