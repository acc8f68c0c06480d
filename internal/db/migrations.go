package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS usuarios (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(64) NOT NULL UNIQUE,
		rut VARCHAR(16),
		password_hash TEXT NOT NULL,
		rol VARCHAR(16) NOT NULL CHECK (rol IN ('admin', 'operador')),
		activo BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS empresas (
		id BIGSERIAL PRIMARY KEY,
		nombre VARCHAR(128) NOT NULL UNIQUE
	);`,
	`CREATE TABLE IF NOT EXISTS lugares (
		id BIGSERIAL PRIMARY KEY,
		nombre VARCHAR(128) NOT NULL UNIQUE
	);`,
	`CREATE TABLE IF NOT EXISTS import_llegadas (
		id BIGSERIAL PRIMARY KEY,
		fecha DATE NOT NULL,
		hora TIME NOT NULL,
		empresa_nombre VARCHAR(128) NOT NULL,
		lugar VARCHAR(128) NOT NULL DEFAULT '',
		anden INTEGER,
		estado TEXT NOT NULL DEFAULT 'Programado',
		CONSTRAINT uniq_llegadas_recorrido UNIQUE (fecha, hora, empresa_nombre, lugar)
	);`,
	`CREATE TABLE IF NOT EXISTS import_salidas (
		id BIGSERIAL PRIMARY KEY,
		fecha DATE NOT NULL,
		hora TIME NOT NULL,
		empresa_nombre VARCHAR(128) NOT NULL,
		lugar VARCHAR(128) NOT NULL DEFAULT '',
		anden INTEGER,
		estado TEXT NOT NULL DEFAULT 'Programado',
		CONSTRAINT uniq_salidas_recorrido UNIQUE (fecha, hora, empresa_nombre, lugar)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_llegadas_fecha_hora ON import_llegadas (fecha, hora);`,
	`CREATE INDEX IF NOT EXISTS idx_salidas_fecha_hora ON import_salidas (fecha, hora);`,
	`CREATE TABLE IF NOT EXISTS noticias (
		id BIGSERIAL PRIMARY KEY,
		contenido TEXT NOT NULL,
		fecha_creacion TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		activa BOOLEAN NOT NULL DEFAULT TRUE
	);`,
	`CREATE TABLE IF NOT EXISTS buses_permitidos (
		id BIGSERIAL PRIMARY KEY,
		patente VARCHAR(16) NOT NULL UNIQUE,
		empresa VARCHAR(128) NOT NULL,
		activa BOOLEAN NOT NULL DEFAULT TRUE
	);`,
	`CREATE TABLE IF NOT EXISTS historial_verificaciones (
		id BIGSERIAL PRIMARY KEY,
		recorrido_id BIGINT NOT NULL,
		tipo_recorrido VARCHAR(16) NOT NULL CHECK (tipo_recorrido IN ('llegada', 'salida')),
		patente_ingresada VARCHAR(16) NOT NULL,
		anden_ingresado VARCHAR(8),
		anden_programado VARCHAR(8),
		es_patente_valida BOOLEAN NOT NULL,
		es_anden_correcto BOOLEAN NOT NULL,
		resultado VARCHAR(16) NOT NULL,
		usuario_id BIGINT NOT NULL REFERENCES usuarios(id),
		observaciones TEXT,
		fecha_manual DATE NOT NULL,
		hora_manual TIME NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_historial_verif_recorrido ON historial_verificaciones (tipo_recorrido, recorrido_id);`,
	`CREATE INDEX IF NOT EXISTS idx_historial_verif_fecha ON historial_verificaciones (fecha_manual);`,
	`CREATE TABLE IF NOT EXISTS historial_extras (
		id BIGSERIAL PRIMARY KEY,
		fecha DATE NOT NULL,
		hora TIME NOT NULL,
		patente VARCHAR(16) NOT NULL,
		empresa VARCHAR(128) NOT NULL,
		lugar VARCHAR(128),
		tipo_recorrido VARCHAR(16) NOT NULL CHECK (tipo_recorrido IN ('llegada', 'salida')),
		anden VARCHAR(8) NOT NULL,
		es_conocido BOOLEAN NOT NULL,
		usuario_id BIGINT NOT NULL REFERENCES usuarios(id),
		observacion TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_historial_extras_fecha ON historial_extras (fecha);`,
	// audit rows are append-only
	`CREATE OR REPLACE FUNCTION reject_audit_mutation()
	RETURNS TRIGGER AS $$
	BEGIN
		RAISE EXCEPTION 'audit table % is append-only', TG_TABLE_NAME;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_historial_verificaciones_immutable') THEN
			CREATE TRIGGER trg_historial_verificaciones_immutable
				BEFORE UPDATE ON historial_verificaciones
				FOR EACH ROW
				EXECUTE PROCEDURE reject_audit_mutation();
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_historial_extras_immutable') THEN
			CREATE TRIGGER trg_historial_extras_immutable
				BEFORE UPDATE ON historial_extras
				FOR EACH ROW
				EXECUTE PROCEDURE reject_audit_mutation();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
