package cmd

const (
	DefaultLogFile          = "airoh.log"
	DefaultLogLevel         = "info"
	DefaultNotebooksDir     = "code/figures"
	DefaultFiguresDir       = "output_data/Figures"
	DefaultContainerWorkdir = "/home/jovyan/work"
	DefaultRequirements     = "requirements.txt"
)
