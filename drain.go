package sqlbridge

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// noMoreResults is the update count a statement reports once no
// further result sets or update counts remain.
const noMoreResults = -1

// outcomes is the stream of result sets and update counts a single
// statement execution produces. The stream starts positioned on the
// first outcome.
type outcomes interface {
	// resultSet reports whether the current outcome is tabular.
	resultSet() bool

	// updateCount returns the current outcome's update count. Only
	// meaningful when resultSet is false; noMoreResults once the
	// stream is exhausted.
	updateCount() int64

	// next advances to the following row of the current result set.
	next() bool

	// scan reads the current row as text-converted column values.
	scan() ([]sql.NullString, error)

	// err returns the error, if any, that ended row iteration.
	err() error

	// advance moves to the next outcome and reports whether it is a
	// result set.
	advance() (bool, error)
}

// drainOutcomes walks the outcome stream to completion. Result-set
// rows are appended to res; update counts are skipped until the
// noMoreResults sentinel terminates the loop. The two states (result
// set, update count) alternate freely, as stored procedures and
// batched statements interleave them.
func drainOutcomes(out outcomes, res *QueryResult) error {
	tabular := out.resultSet()
	for {
		if tabular {
			if err := appendResultSet(out, res); err != nil {
				return err
			}
		} else if out.updateCount() == noMoreResults {
			break
		}

		var err error
		tabular, err = out.advance()
		if err != nil {
			return err
		}
		if !tabular && out.updateCount() == noMoreResults {
			break
		}
	}
	return nil
}

func appendResultSet(out outcomes, res *QueryResult) error {
	for out.next() {
		vals, err := out.scan()
		if err != nil {
			return err
		}
		row := make([]string, len(vals))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			}
		}
		res.Rows = append(res.Rows, row)
	}
	return out.err()
}

// rowOutcomes adapts database rows to the outcome stream. The
// database/sql layer only surfaces additional result sets, so update
// counts never appear mid-stream; the exhausted stream reports the
// sentinel.
type rowOutcomes struct {
	rows *sqlx.Rows
	done bool
}

func (o *rowOutcomes) resultSet() bool {
	return !o.done
}

func (o *rowOutcomes) updateCount() int64 {
	if o.done {
		return noMoreResults
	}
	return 0
}

func (o *rowOutcomes) next() bool {
	return o.rows.Next()
}

func (o *rowOutcomes) scan() ([]sql.NullString, error) {
	cols, err := o.rows.Columns()
	if err != nil {
		return nil, err
	}
	vals := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range vals {
		dest[i] = &vals[i]
	}
	if err := o.rows.Scan(dest...); err != nil {
		return nil, err
	}
	return vals, nil
}

func (o *rowOutcomes) err() error {
	return o.rows.Err()
}

func (o *rowOutcomes) advance() (bool, error) {
	if o.rows.NextResultSet() {
		return true, nil
	}
	o.done = true
	return false, o.rows.Err()
}
