// import_categorias une categorías salariales de una hoja exportada (CSV o .xlsx) con la colección actual
// de una empresa, con la misma semántica que la restauración: unión por clave, nunca reemplazo.
//
// Uso: go run ./cmd/import_categorias --company <id> --file categorias.csv|categorias.xlsx [--encoding latin1] [--department <id>] [--dry-run]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Talento-api/internal/application/category"
	"github.com/jhoicas/Talento-api/internal/domain/repository"
	"github.com/jhoicas/Talento-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Talento-api/internal/infrastructure/redisstore"
	"github.com/jhoicas/Talento-api/pkg/config"
	"github.com/jhoicas/Talento-api/pkg/logger"
)

type importOptions struct {
	companyID    string
	file         string
	encoding     string
	separator    string
	departmentID string
	dryRun       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newImportCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:          "import_categorias",
		Short:        "Importa categorías salariales desde CSV o Excel (unión con la colección actual)",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.companyID, "company", "", "ID de la empresa (obligatorio)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Ruta del CSV o .xlsx (obligatorio)")
	cmd.Flags().StringVar(&opts.encoding, "encoding", "latin1", "Codificación del CSV: latin1 | windows-1252 | utf8")
	cmd.Flags().StringVar(&opts.separator, "sep", ";", "Separador de columnas")
	cmd.Flags().StringVar(&opts.departmentID, "department", "", "Departamento por defecto para filas sin departamento")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Solo valida y muestra el resumen, sin escribir")

	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(ctx context.Context, opts importOptions) error {
	sep := []rune(opts.separator)
	if len(sep) != 1 {
		return fmt.Errorf("--sep debe ser un único carácter")
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("abrir archivo: %w", err)
	}
	defer f.Close()

	rows, err := readRows(opts.file, f, opts.encoding, sep[0])
	if err != nil {
		return fmt.Errorf("%s: %w", opts.file, err)
	}
	records, err := parseCategories(rows)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.file, err)
	}
	if opts.dryRun {
		fmt.Printf("%d categorías válidas en %s (sin escribir)\n", len(records), opts.file)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	timeout := cfg.Fallback.StoreTimeout

	var (
		primary     repository.SalaryCategoryRepository
		departments repository.DepartmentRepository
		assignments repository.AssignmentCounter
		store       repository.ConfigStore
	)
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Warn().Err(err).Msg("PostgreSQL no disponible; se importa solo en el almacén de respaldo")
		primary = postgres.NewUnavailableCategoryRepository(err)
	} else {
		defer pool.Close()
		primary = postgres.NewSalaryCategoryRepository(pool, timeout)
		departments = postgres.NewDepartmentRepository(pool, timeout)
		assignments = postgres.NewAssignmentRepository(pool, timeout)
	}
	if strings.EqualFold(cfg.Fallback.Backend, config.FallbackPostgres) {
		if pool == nil {
			return fmt.Errorf("FALLBACK_BACKEND=postgres requiere PostgreSQL disponible")
		}
		store = postgres.NewConfigStoreRepository(pool, timeout)
	} else {
		rdb := redisstore.NewClient(cfg.Redis)
		defer rdb.Close()
		store = redisstore.NewConfigStore(rdb, timeout)
	}

	svc := category.NewService(primary, category.NewFallbackStore(store, cfg.Fallback.KeyPrefix, log), departments, assignments, log)
	rep, err := svc.Import(ctx, opts.companyID, records, opts.departmentID)
	if err != nil {
		return fmt.Errorf("importar: %w", err)
	}

	fmt.Printf("Importadas %d categorías (total %d, %d con departamento por defecto, %d replicadas en primario, %d fallos)\n",
		rep.Restored, rep.Total, rep.DefaultAssigned, rep.MirroredToPrimary, rep.PrimaryFailures)
	return nil
}
