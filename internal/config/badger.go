package config

type Badger struct {
	Dir      string `env:"BADGER_DIR" envDefault:"./data/badger"`
	InMemory bool   `env:"BADGER_IN_MEMORY" envDefault:"false"`
}
