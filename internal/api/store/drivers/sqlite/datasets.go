package sqlite

import (
	"context"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
)

type dataSetsRepo struct {
	q dbtx
}

const dataSetSelect = `SELECT id, tenant_id, name, file, encoding, delimiter, quotechar, has_header, fields, ` +
	auditColumns + ` FROM datasets`

func scanDataSet(s scanner) (domain.DataSet, error) {
	var (
		d      domain.DataSet
		fields string
	)
	dest := []any{&d.ID, &d.TenantID, &d.Name, &d.File, &d.Encoding, &d.Delimiter, &d.Quotechar, &d.HasHeader, &fields}
	if err := s.Scan(append(dest, auditDest(&d.Audit)...)...); err != nil {
		return domain.DataSet{}, err
	}
	var err error
	d.Fields, err = decodeStrings(fields)
	return d, err
}

func (r *dataSetsRepo) GetDataSet(ctx context.Context, id string) (domain.DataSet, error) {
	d, err := scanDataSet(r.q.QueryRowContext(ctx, dataSetSelect+` WHERE id = ?`, id))
	if err != nil {
		return domain.DataSet{}, mapNotFound(err)
	}
	return d, nil
}

func (r *dataSetsRepo) ListDataSets(ctx context.Context, tenantIDs []string) ([]domain.DataSet, error) {
	where, args, ok := tenantFilter(tenantIDs)
	if !ok {
		return []domain.DataSet{}, nil
	}
	return queryList(ctx, r.q, scanDataSet, dataSetSelect+where+` ORDER BY created_at DESC, id DESC`, args...)
}

func (r *dataSetsRepo) CreateDataSet(ctx context.Context, d domain.DataSet) error {
	fields, err := encodeStrings(d.Fields)
	if err != nil {
		return err
	}
	args := []any{d.ID, d.TenantID, d.Name, d.File, d.Encoding, d.Delimiter, d.Quotechar, d.HasHeader, fields}
	_, err = r.q.ExecContext(ctx,
		`INSERT INTO datasets (id, tenant_id, name, file, encoding, delimiter, quotechar, has_header, fields, `+
			auditColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append(args, auditArgs(d.Audit)...)...,
	)
	return mapConstraint(err)
}

func (r *dataSetsRepo) UpdateDataSet(ctx context.Context, d domain.DataSet) error {
	fields, err := encodeStrings(d.Fields)
	if err != nil {
		return err
	}
	return requireAffected(r.q.ExecContext(ctx,
		`UPDATE datasets SET name = ?, file = ?, encoding = ?, delimiter = ?, quotechar = ?, has_header = ?,
		 fields = ?, modified_at = ?, modified_by = ? WHERE id = ?`,
		d.Name, d.File, d.Encoding, d.Delimiter, d.Quotechar, d.HasHeader, fields,
		d.ModifiedAt.UTC(), d.ModifiedBy, d.ID,
	))
}

func (r *dataSetsRepo) DeleteDataSet(ctx context.Context, id string) error {
	return requireAffected(r.q.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id))
}
