package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: img2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert images to a multi-page PDF (default)")
	fmt.Fprintln(w, "  preview    Render PDF pages to PNG files")
	fmt.Fprintln(w, "  info       Show PDF pages and metadata")
	fmt.Fprintln(w, "  shell      Build a document interactively")
	fmt.Fprintln(w, "  doctor     Check that rendering works on this system")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'img2pdf help <command>' for details on a specific command.")
}

// printBuildFlags prints the flags shared by commands that assemble documents.
func printBuildFlags(w io.Writer) {
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: a3, a4, a5, letter, legal (default: a4)")
	fmt.Fprintln(w, "      --orientation <s>     portrait or landscape (default: portrait)")
	fmt.Fprintln(w, "      --margin <mm>         Margin on every side, 0-50 (default: 10)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Images:")
	fmt.Fprintln(w, "      --quality <s>         high (lossless), medium or low (JPEG)")
	fmt.Fprintln(w, "      --fit                 Scale images to the printable area (default)")
	fmt.Fprintln(w, "      --no-fit              Center images at natural size, 1 px = 1 mm")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --title <s>           Title, also names the file (default: Converted PDF)")
	fmt.Fprintln(w, "      --author <s>          Author")
	fmt.Fprintln(w, "      --subject <s>         Subject")
	fmt.Fprintln(w, "      --page-numbers        Print \"Page N of M\" at the bottom of each page")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Conversion timeout (default: 2m)")
	fmt.Fprintln(w)
}

// printCommonFlags prints the flags every command accepts.
func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: img2pdf convert <file|dir>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert images to one PDF, one image per page, in argument order.")
	fmt.Fprintln(w, "Directories add their image files sorted by name. Files that are not")
	fmt.Fprintln(w, "images are skipped with a warning.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: current)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel file reads; pages then follow read order")
	fmt.Fprintln(w)
	printBuildFlags(w)
	printCommonFlags(w)
}

// printPreviewUsage prints usage for the preview command.
func printPreviewUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: img2pdf preview <file.pdf|images...> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render pages to <name>-page-<n>.png. Images are converted first,")
	fmt.Fprintln(w, "using the same flags as convert.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -o, --output <dir>        Directory for PNG files (default: current)")
	fmt.Fprintln(w, "      --pages <list>        Pages such as 1,3-5 (default: all)")
	fmt.Fprintln(w, "  -s, --scale <x>           Scale over 72 DPI, 0.25-8 (default: 1.5)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel render workers (0 = auto)")
	fmt.Fprintln(w)
	printBuildFlags(w)
	printCommonFlags(w)
}

// printInfoUsage prints usage for the info command.
func printInfoUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: img2pdf info <file.pdf>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show page count, page sizes and document metadata.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --text                Print the text found on each page")
	printCommonFlags(w)
}

// printShellUsage prints usage for the shell command.
func printShellUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: img2pdf shell [file|dir]... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Read commands from standard input. Flags set the initial options.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -o, --output <dir>        Directory used by save and render")
	fmt.Fprintln(w, "  -s, --scale <x>           Preview scale over 72 DPI (default: 1.5)")
	fmt.Fprintln(w)
	printBuildFlags(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	printShellCommands(w)
}

// printShellCommands lists the commands understood by the shell.
func printShellCommands(w io.Writer) {
	fmt.Fprintln(w, "Shell commands:")
	fmt.Fprintln(w, "  add <file|dir>...         Add images")
	fmt.Fprintln(w, "  list                      List images in page order")
	fmt.Fprintln(w, "  show <n> [out.png]        Show image details, optionally write a thumbnail")
	fmt.Fprintln(w, "  remove <n>                Remove image n")
	fmt.Fprintln(w, "  move <from> <to>          Move an image to another position")
	fmt.Fprintln(w, "  clear                     Remove all images")
	fmt.Fprintln(w, "  set <option> <value>      size, orientation, margin, quality, fit, numbers,")
	fmt.Fprintln(w, "                            title, author, subject (\"-\" clears text)")
	fmt.Fprintln(w, "  settings                  Print the options as a config file")
	fmt.Fprintln(w, "  convert                   Build the PDF")
	fmt.Fprintln(w, "  next, prev, goto <n>      Move through the preview")
	fmt.Fprintln(w, "  render [out.png]          Write the current preview page")
	fmt.Fprintln(w, "  save [dir]                Write the PDF")
	fmt.Fprintln(w, "  quit                      Leave the shell")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: img2pdf doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build a one-page PDF and render it with MuPDF, then report the")
	fmt.Fprintln(w, "platform, container and CI detection and temp directory access.")
	fmt.Fprintln(w, "Exits 1 when a check fails; warnings alone exit 0.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Print the report as JSON")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "preview":
		printPreviewUsage(env.Stdout)
	case "info":
		printInfoUsage(env.Stdout)
	case "shell":
		printShellUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: img2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: img2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
