package ledger

import (
	"github.com/finledger/backend/internal/domain/audit"
)

// Audit domains for ledger aggregates
const (
	AuditDomainTransaction = "transaction"
	AuditDomainAccount     = "account"
)

// TransactionAuditSchema lists the transaction fields that appear in the
// audit trail. The list is maintained by hand: adding an entity field does
// not audit it until it is added here.
var TransactionAuditSchema = audit.Schema[Transaction]{
	Domain: AuditDomainTransaction,
	Fields: []audit.Field[Transaction]{
		{Name: "amount", Value: func(t *Transaction) any { return t.Amount }},
		{Name: "payee", Value: func(t *Transaction) any { return t.Payee }},
		{Name: "category_id", Value: func(t *Transaction) any { return t.CategoryID }},
		{Name: "notes", Value: func(t *Transaction) any { return t.Notes }},
		{Name: "occurred_at", Value: func(t *Transaction) any { return t.OccurredAt }},
		{Name: "status", Value: func(t *Transaction) any { return t.Status }},
		{Name: "group_id", Value: func(t *Transaction) any { return t.GroupID }},
		{Name: "is_split", Value: func(t *Transaction) any { return t.IsSplit }},
	},
}

// AccountAuditSchema lists the account fields that appear in the audit trail
var AccountAuditSchema = audit.Schema[Account]{
	Domain: AuditDomainAccount,
	Fields: []audit.Field[Account]{
		{Name: "name", Value: func(a *Account) any { return a.Name }},
		{Name: "kind", Value: func(a *Account) any { return a.Kind }},
		{Name: "currency", Value: func(a *Account) any { return a.Currency }},
		{Name: "archived", Value: func(a *Account) any { return a.Archived }},
	},
}
