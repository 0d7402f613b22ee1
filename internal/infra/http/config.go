package server

type Config struct {
	Port              string
	DisableMiddleware bool
}

func NewConfig(
	port string,
	disableMiddleware bool,
) Config {
	return Config{
		Port:              port,
		DisableMiddleware: disableMiddleware,
	}
}
