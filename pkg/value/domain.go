// Package value implements the tagged value union (DB_VALUE) used for bind
// parameters, column contents and sentinel comparisons: a domain descriptor
// plus a payload, with NULL tracked as a distinct bit rather than a payload
// state.
package value

import "fmt"

// Domain identifies which variant of the union is live. The enumeration is
// closed: legacy codes (float, smallint, timestamp, monetary, error,
// pointer, vobj, db_value, db_char, db_nchar, db_varnchar, elo) are not
// represented here at all, so constructing one is a compile error rather
// than a runtime bug.
type Domain int

const (
	DomainNull Domain = iota
	DomainInteger
	DomainBigint
	DomainDouble
	DomainNumeric
	DomainVarchar
	DomainVarbit
	DomainDate
	DomainTime
	DomainDatetime
	DomainOID
	DomainSequence
	DomainResultSet
)

func (d Domain) String() string {
	switch d {
	case DomainNull:
		return "NULL"
	case DomainInteger:
		return "INTEGER"
	case DomainBigint:
		return "BIGINT"
	case DomainDouble:
		return "DOUBLE"
	case DomainNumeric:
		return "NUMERIC"
	case DomainVarchar:
		return "VARCHAR"
	case DomainVarbit:
		return "VARBIT"
	case DomainDate:
		return "DATE"
	case DomainTime:
		return "TIME"
	case DomainDatetime:
		return "DATETIME"
	case DomainOID:
		return "OID"
	case DomainSequence:
		return "SEQUENCE"
	case DomainResultSet:
		return "RESULTSET"
	default:
		return fmt.Sprintf("DOMAIN(%d)", int(d))
	}
}

// MaxNumericPrecision bounds NUMERIC precision (I2).
const MaxNumericPrecision = 38

// DomainAttrs carries the type-specific descriptor: precision/scale for
// NUMERIC, declared length and collation id for VARCHAR, declared bit length
// for VARBIT, element-domain list for SEQUENCE.
type DomainAttrs struct {
	Precision    int
	Scale        int
	Collation    int32
	DeclaredLen  int
	ElementTypes []Domain
}

func defaultAttrsFor(d Domain) DomainAttrs {
	switch d {
	case DomainNumeric:
		return DomainAttrs{Precision: MaxNumericPrecision, Scale: 0}
	default:
		return DomainAttrs{}
	}
}
