package common

import (
	"os"
	"path"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/zeu5/selfplay-rl/model"
	"github.com/zeu5/selfplay-rl/policies"
	"github.com/zeu5/selfplay-rl/util"
)

const envPrefix = "SELFPLAY_"

type Flags struct {
	AgentFlags
	SavePath string
	RunFlags
	StoreFlags
	Parallelism int
	Debug       bool
	LogLevel    string
}

type AgentFlags struct {
	LearningRate   float64
	DiscountFactor float64
	Epsilon        float64
	EpsilonDecay   float64
	EpsilonMin     float64
	AgentPlayer    int
	Seed           uint64
	// Opponent is one of random, model or softmax.
	Opponent      string
	OpponentModel string
	Temperature   float64
	UCBConstant   float64
}

type RunFlags struct {
	NumRuns     int
	Episodes    int
	Horizon     int
	SampleEvery int
	EvalGames   int
}

type StoreFlags struct {
	Store         string
	ModelName     string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string `json:"-"`
	RedisDB       int
	PostgresDSN   string `json:"-"`
}

func DefaultFlags() *Flags {
	return &Flags{
		AgentFlags: AgentFlags{
			LearningRate:   0.5,
			DiscountFactor: 0.9,
			Epsilon:        1.0,
			EpsilonDecay:   0.99,
			EpsilonMin:     0.05,
			AgentPlayer:    1,
			Seed:           0,
			Opponent:       "random",
			Temperature:    1.0,
			UCBConstant:    1.0,
		},
		SavePath: "results",
		RunFlags: RunFlags{
			NumRuns:     1,
			Episodes:    2000,
			Horizon:     20,
			SampleEvery: 100,
			EvalGames:   200,
		},
		StoreFlags: StoreFlags{
			Store:      model.StoreFile,
			ModelName:  "tictactoe",
			SQLitePath: "models.db",
			RedisAddr:  "localhost:6379",
		},
		Parallelism: 4,
		Debug:       false,
		LogLevel:    "info",
	}
}

// LoadEnv reads an optional .env file and applies SELFPLAY_* variables on top of the
// defaults. Flags given on the command line still win.
func (f *Flags) LoadEnv(files ...string) {
	// a missing .env file is fine
	_ = godotenv.Load(files...)

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	float := func(name string, dst *float64) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = n
			}
		}
	}

	str("SAVE_PATH", &f.SavePath)
	str("LOG_LEVEL", &f.LogLevel)
	str("STORE", &f.Store)
	str("MODEL_NAME", &f.ModelName)
	str("SQLITE_PATH", &f.SQLitePath)
	str("REDIS_ADDR", &f.RedisAddr)
	str("REDIS_PASSWORD", &f.RedisPassword)
	integer("REDIS_DB", &f.RedisDB)
	str("POSTGRES_DSN", &f.PostgresDSN)
	integer("EPISODES", &f.Episodes)
	integer("PARALLELISM", &f.Parallelism)
	float("LEARNING_RATE", &f.LearningRate)
	float("DISCOUNT_FACTOR", &f.DiscountFactor)
}

// AddFlags binds every field to fs, using the current values as defaults.
func (f *Flags) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.SavePath, "save-path", f.SavePath, "Path to save results")
	fs.IntVar(&f.Parallelism, "parallelism", f.Parallelism, "Number of parallel experiments")
	fs.BoolVar(&f.Debug, "debug", f.Debug, "Dump episode traces")
	fs.StringVar(&f.LogLevel, "log-level", f.LogLevel, "Log level")

	fs.Float64Var(&f.LearningRate, "learning-rate", f.LearningRate, "Learning rate")
	fs.Float64Var(&f.DiscountFactor, "discount", f.DiscountFactor, "Discount factor")
	fs.Float64Var(&f.Epsilon, "epsilon", f.Epsilon, "Initial exploration rate")
	fs.Float64Var(&f.EpsilonDecay, "epsilon-decay", f.EpsilonDecay, "Exploration decay per episode")
	fs.Float64Var(&f.EpsilonMin, "epsilon-min", f.EpsilonMin, "Exploration floor")
	fs.IntVar(&f.AgentPlayer, "agent-player", f.AgentPlayer, "Side of the learning agent (1 moves first)")
	fs.Uint64Var(&f.Seed, "seed", f.Seed, "Random seed, 0 seeds from the clock")
	fs.StringVar(&f.Opponent, "opponent", f.Opponent, "Opponent policy: random, model or softmax")
	fs.StringVar(&f.OpponentModel, "opponent-model", f.OpponentModel, "Stored model used by the model and softmax opponents")
	fs.Float64Var(&f.Temperature, "temperature", f.Temperature, "Softmax opponent temperature")
	fs.Float64Var(&f.UCBConstant, "ucb-constant", f.UCBConstant, "Exploration constant of the UCB agent in compare")

	fs.IntVar(&f.NumRuns, "num-runs", f.NumRuns, "Number of runs")
	fs.IntVar(&f.Episodes, "episodes", f.Episodes, "Number of training episodes")
	fs.IntVar(&f.Horizon, "horizon", f.Horizon, "Maximum plies per episode")
	fs.IntVar(&f.SampleEvery, "sample-every", f.SampleEvery, "Episodes between progress samples")
	fs.IntVar(&f.EvalGames, "eval-games", f.EvalGames, "Greedy evaluation games after training")

	fs.StringVar(&f.Store, "store", f.Store, "Model store: file, sqlite, redis or postgres")
	fs.StringVar(&f.ModelName, "model", f.ModelName, "Name of the stored model")
	fs.StringVar(&f.SQLitePath, "sqlite-path", f.SQLitePath, "sqlite database for the sqlite store")
	fs.StringVar(&f.RedisAddr, "redis-addr", f.RedisAddr, "Redis address for the redis store")
	fs.StringVar(&f.RedisPassword, "redis-password", f.RedisPassword, "Redis password")
	fs.IntVar(&f.RedisDB, "redis-db", f.RedisDB, "Redis database")
	fs.StringVar(&f.PostgresDSN, "postgres-dsn", f.PostgresDSN, "Postgres connection string for the postgres store")
}

func (f *Flags) Hyperparameters(stateSize, actionSize int) policies.Hyperparameters {
	return policies.Hyperparameters{
		StateSize:      stateSize,
		ActionSize:     actionSize,
		LearningRate:   f.LearningRate,
		DiscountFactor: f.DiscountFactor,
		Epsilon:        f.Epsilon,
		EpsilonDecay:   f.EpsilonDecay,
		EpsilonMin:     f.EpsilonMin,
	}
}

func (f *Flags) StoreConfig() model.StoreConfig {
	return model.StoreConfig{
		Kind:          f.Store,
		Dir:           path.Join(f.SavePath, "models"),
		SQLitePath:    f.SQLitePath,
		RedisAddr:     f.RedisAddr,
		RedisPassword: f.RedisPassword,
		RedisDB:       f.RedisDB,
		RedisPrefix:   "selfplay:model:",
		PostgresDSN:   f.PostgresDSN,
	}
}

// Logger builds the logger configured by the flags.
func (f *Flags) Logger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(f.LogLevel)
	if err != nil {
		log.WithField("level", f.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

func (f *Flags) Record() error {
	return util.SaveJson(path.Join(f.SavePath, "config.json"), f)
}
