package identity

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// sqlDirectory implements Directory over database/sql, normally through
// the ODBC driver pointed at the Informix instance that owns saeusua and
// gerespu.
type sqlDirectory struct {
	db      *sql.DB
	timeout time.Duration
}

// OpenDirectory connects to the legacy store described by cfg.
func OpenDirectory(cfg config.DirectoryConfig) (Directory, error) {
	if cfg.DSN == "" {
		return nil, errors.New("DIRECTORY_DSN not provided")
	}
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &sqlDirectory{db: db, timeout: timeout}, nil
}

// NewSQLDirectory wraps an already-open handle, used by tests.
func NewSQLDirectory(db *sql.DB, timeout time.Duration) Directory {
	return &sqlDirectory{db: db, timeout: timeout}
}

func (d *sqlDirectory) LookupUserCode(ctx context.Context, username string) (int64, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	const query = `SELECT usua_cod_usua FROM saeusua WHERE usua_nom_usua = ?`
	var code int64
	err := d.db.QueryRowContext(ctx, query, username).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, apperrors.NewDependencyUnavailable("identity directory", err)
	}
	return code, true, nil
}

func (d *sqlDirectory) LookupCredential(ctx context.Context, userCode int64) (domain.Credential, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	const query = `SELECT respu_pas_usua, respu_rol_usua FROM gerespu WHERE respu_cod_usua = ?`
	var (
		secret []byte
		marker sql.NullString
	)
	err := d.db.QueryRowContext(ctx, query, userCode).Scan(&secret, &marker)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Credential{}, false, nil
	}
	if err != nil {
		return domain.Credential{}, false, apperrors.NewDependencyUnavailable("identity directory", err)
	}
	return domain.Credential{
		EncryptedPassword: secret,
		RoleMarker:        strings.TrimSpace(marker.String),
	}, true, nil
}

func (d *sqlDirectory) ListAdministrators(ctx context.Context) ([]domain.Administrator, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	const query = `
        SELECT r.respu_cod_usua, s.usua_nom_usua
        FROM gerespu r
        JOIN saeusua s ON r.respu_cod_usua = s.usua_cod_usua
        WHERE r.respu_rol_usua = 'A'`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewDependencyUnavailable("identity directory", err)
	}
	defer rows.Close()

	var admins []domain.Administrator
	for rows.Next() {
		var admin domain.Administrator
		if err := rows.Scan(&admin.UserCode, &admin.Username); err != nil {
			return nil, apperrors.NewDependencyUnavailable("identity directory", err)
		}
		admin.Username = strings.TrimSpace(admin.Username)
		admins = append(admins, admin)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDependencyUnavailable("identity directory", err)
	}
	return admins, nil
}

func (d *sqlDirectory) ListUsers(ctx context.Context) ([]domain.DirectoryUser, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	const query = `SELECT usua_cod_usua, usua_nom_usua FROM saeusua ORDER BY usua_nom_usua`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewDependencyUnavailable("identity directory", err)
	}
	defer rows.Close()

	var users []domain.DirectoryUser
	for rows.Next() {
		var user domain.DirectoryUser
		var name sql.NullString
		if err := rows.Scan(&user.UserCode, &name); err != nil {
			return nil, apperrors.NewDependencyUnavailable("identity directory", err)
		}
		user.Username = strings.TrimSpace(name.String)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDependencyUnavailable("identity directory", err)
	}
	return users, nil
}
