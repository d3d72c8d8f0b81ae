package storage

const (
	DATA_DIR        = "rodroute-data"
	GRAPH_FILE_NAME = "rod.graph"
)
