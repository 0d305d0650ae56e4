// Package clfstat reads web server access logs in the Common Log Format, and
// its Combined variant, and summarises the traffic they record: how many
// requests there were, from how many distinct hosts, and which paths, hours,
// and status codes were the busiest.
//
// Logs are streamed, never loaded whole, through a Pipe. Most operations
// return a Pipe, so that operations can be chained:
//
//	res, err := clfstat.Analyze(clfstat.File("access.log"), clfstat.Config{})
//
// If any pipe operation results in an error, the pipe's Error method will
// return that error, and all pipe operations will be no-ops. Thus you can
// safely chain a whole series of operations without having to check the error
// status at each stage.
//
// The same engine runs arbitrary per-line or per-chunk transforms:
//
//	_, err := clfstat.File("access.log").
//		WithTransformErrorHandler(func(line string, err error) {
//			log.Printf("skipped %q: %v", line, err)
//		}).
//		TransformLines(func(line string) (string, error) {
//			rec, err := clfstat.Parse(line, nil)
//			if err != nil {
//				return "", err
//			}
//			return rec.RemoteHost.String() + "\n", nil
//		}).
//		WriteFile("hosts.txt")
package clfstat
