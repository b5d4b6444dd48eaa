package buildinfo

const Graffiti = " ____  __  __  ___ _____ ___ \n/ ___||  \\/  |/ _ \\_   _| __|\n\\___ \\| |\\/| | (_) || | | _| \n|____/|_|  |_|\\___/ |_| |___|\n\n"

var (
	BuildTag string = "v0.0.0"
	Name     string = "SMOTE"
	Time     string = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

var Info buildinfo
