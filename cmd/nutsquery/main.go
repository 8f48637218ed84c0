// Command nutsquery seeds, queries and explains tables kept in a snapshot
// file.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/nutsdb/nutsquery"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	cfg        *Config
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nutsquery",
	Short: "Paginated queries over nutsquery snapshots",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = loadConfig(configFile, cmd.Flags()); err != nil {
			return err
		}
		logger, err = initLogger(cfg.LogLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.String("catalog", "", "catalog file")
	flags.String("snapshot", "", "snapshot file")
	flags.Int("default-limit", 0, "page size when a query sets none")
	flags.Int("max-limit", 0, "largest page size a query may ask for")
	flags.Int64("node-num", 0, "snowflake node for query ids")
	flags.String("log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(seedCmd(), queryCmd(), explainCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openEngine loads the catalog and the snapshot, starting from an empty
// store when the snapshot does not exist yet.
func openEngine() (*nutsquery.Engine, *nutsquery.MemCatalog, error) {
	cat, err := nutsquery.LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, nil, err
	}
	st, err := nutsquery.OpenSnapshot(cfg.Snapshot)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("no snapshot, starting empty", zap.String("snapshot", cfg.Snapshot))
		st, err = nutsquery.NewStore(), nil
	}
	if err != nil {
		return nil, nil, err
	}
	eng, err := nutsquery.Open(cat, st,
		nutsquery.WithDefaultLimit(cfg.DefaultLimit),
		nutsquery.WithMaxLimit(cfg.MaxLimit),
		nutsquery.WithNodeNum(cfg.NodeNum),
		nutsquery.WithLogger(zapLogger{s: logger.Sugar()}),
	)
	if err != nil {
		return nil, nil, err
	}
	return eng, cat, nil
}

func seedCmd() *cobra.Command {
	var table string
	var rows int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert random rows and write the snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cat, err := openEngine()
			if err != nil {
				return err
			}
			t, err := cat.Table(table)
			if err != nil {
				return err
			}
			node, err := snowflake.NewNode(cfg.NodeNum)
			if err != nil {
				return err
			}
			for i := 0; i < rows; i++ {
				if err := eng.Insert(t.Name, randomRecord(t, node, i)); err != nil {
					return err
				}
			}
			if err := nutsquery.WriteSnapshot(cfg.Snapshot, eng.Store()); err != nil {
				return err
			}
			logger.Info("seeded", zap.String("table", t.Name), zap.Int("rows", rows), zap.String("snapshot", cfg.Snapshot))
			return nil
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "table to seed")
	cmd.Flags().IntVar(&rows, "rows", 100, "number of rows")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func randomRecord(t *nutsquery.Table, node *snowflake.Node, i int) map[string]nutsquery.Value {
	rec := make(map[string]nutsquery.Value, len(t.Fields))
	for _, f := range t.Fields {
		if f.Name == t.PrimaryKey {
			rec[f.Name] = primaryValue(f.Kind, node, i)
			continue
		}
		if f.Nullable && rand.Intn(10) == 0 {
			rec[f.Name] = nutsquery.Null()
			continue
		}
		rec[f.Name] = randomValue(f.Kind)
	}
	return rec
}

func primaryValue(kind nutsquery.Kind, node *snowflake.Node, i int) nutsquery.Value {
	switch kind {
	case nutsquery.KindInt:
		return nutsquery.Int(node.Generate().Int64())
	case nutsquery.KindUint:
		return nutsquery.Uint(uint64(node.Generate().Int64()))
	case nutsquery.KindString:
		return nutsquery.String(node.Generate().Base58())
	case nutsquery.KindBytes:
		return nutsquery.Bytes(node.Generate().Bytes())
	case nutsquery.KindFloat:
		return nutsquery.Float(float64(i))
	}
	return nutsquery.Bool(i%2 == 1)
}

var words = []string{"amber", "birch", "cedar", "delta", "ember", "fjord", "gale", "harbor"}

func randomValue(kind nutsquery.Kind) nutsquery.Value {
	switch kind {
	case nutsquery.KindBool:
		return nutsquery.Bool(rand.Intn(2) == 1)
	case nutsquery.KindInt:
		return nutsquery.Int(rand.Int63n(100))
	case nutsquery.KindUint:
		return nutsquery.Uint(uint64(rand.Intn(100)))
	case nutsquery.KindFloat:
		return nutsquery.Float(rand.Float64() * 100)
	case nutsquery.KindBytes:
		b := make([]byte, 4)
		rand.Read(b)
		return nutsquery.Bytes(b)
	}
	return nutsquery.String(words[rand.Intn(len(words))])
}

type queryFlags struct {
	table  string
	where  []string
	or     []string
	order  string
	desc   bool
	limit  int
	offset int
	token  string
}

func (qf *queryFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&qf.table, "table", "", "table to query")
	flags.StringArrayVar(&qf.where, "where", nil, "condition field<op>value, op one of = < <= > >= ^= (repeatable)")
	flags.StringArrayVar(&qf.or, "or", nil, "comma separated conditions of one more disjunct (repeatable)")
	flags.StringVar(&qf.order, "order", "", "ordering field")
	flags.BoolVar(&qf.desc, "desc", false, "descending order")
	flags.IntVar(&qf.limit, "limit", 0, "page size")
	flags.IntVar(&qf.offset, "offset", 0, "rows to skip on the first page")
	_ = cmd.MarkFlagRequired("table")
}

func (qf *queryFlags) build(cat nutsquery.Catalog) (nutsquery.Query, error) {
	t, err := cat.Table(qf.table)
	if err != nil {
		return nutsquery.Query{}, err
	}
	pred, err := parseWhere(t, qf.where, qf.or)
	if err != nil {
		return nutsquery.Query{}, err
	}
	q := nutsquery.Query{
		Table:   t.Name,
		Where:   pred,
		OrderBy: qf.order,
		Offset:  qf.offset,
		Limit:   qf.limit,
	}
	if qf.desc {
		q.Direction = nutsquery.Backward
	}
	return q, nil
}

type output struct {
	QueryID string           `json:"query_id"`
	Path    string           `json:"path"`
	Scanned int              `json:"scanned"`
	Rows    []map[string]any `json:"rows"`
	Next    string           `json:"next,omitempty"`
}

func queryCmd() *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print one page of a query as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cat, err := openEngine()
			if err != nil {
				return err
			}
			q, err := qf.build(cat)
			if err != nil {
				return err
			}
			res, err := eng.Query(cmd.Context(), q, qf.token)
			if nutsquery.IsContinuation(err) {
				return fmt.Errorf("token does not resume this query: %w", err)
			}
			if err != nil {
				return err
			}

			out := output{
				QueryID: res.QueryID.String(),
				Path:    res.Path,
				Scanned: res.Scanned,
				Rows:    make([]map[string]any, 0, len(res.Rows)),
				Next:    res.Next,
			}
			for _, row := range res.Rows {
				rec := make(map[string]any, len(row.Values))
				for name, v := range row.Record() {
					rec[name] = v.Interface()
				}
				out.Rows = append(out.Rows, rec)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	qf.register(cmd)
	cmd.Flags().StringVar(&qf.token, "token", "", "continuation token of the previous page")
	return cmd
}

func explainCmd() *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Describe the access path a query would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cat, err := openEngine()
			if err != nil {
				return err
			}
			q, err := qf.build(cat)
			if err != nil {
				return err
			}
			plan, err := eng.Explain(q)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), plan)
			return nil
		},
	}
	qf.register(cmd)
	return cmd
}
