package session

// SampleSource is the program surfaces start with when no file is given
const SampleSource = `public class HolaMundo {
    public static void main(String[] args) {
        System.out.println("Hola Mundo desde Java!");

        int numero = 42;
        String nombre = "Java";

        for (int i = 0; i < 3; i++) {
            System.out.println("Iteración: " + i);
        }
    }
}`
